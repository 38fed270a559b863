package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/depaudit/internal/utils/path"
)

const testHomeDirectoryConstant = "/home/auditor"

func TestHomeExpanderExpand(testInstance *testing.T) {
	testCases := []struct {
		name          string
		provider      pathutils.HomeDirectoryProvider
		candidatePath string
		expectedPath  string
	}{
		{
			name:          "bare_tilde",
			provider:      func() (string, error) { return testHomeDirectoryConstant, nil },
			candidatePath: "~",
			expectedPath:  testHomeDirectoryConstant,
		},
		{
			name:          "tilde_slash",
			provider:      func() (string, error) { return testHomeDirectoryConstant, nil },
			candidatePath: "~/composer.phar",
			expectedPath:  filepath.Join(testHomeDirectoryConstant, "composer.phar"),
		},
		{
			name:          "absolute_path_unchanged",
			provider:      func() (string, error) { return testHomeDirectoryConstant, nil },
			candidatePath: "/srv/app",
			expectedPath:  "/srv/app",
		},
		{
			name:          "other_user_unchanged",
			provider:      func() (string, error) { return testHomeDirectoryConstant, nil },
			candidatePath: "~deploy/app",
			expectedPath:  "~deploy/app",
		},
		{
			name:          "lookup_failure_unchanged",
			provider:      func() (string, error) { return "", errors.New("no home") },
			candidatePath: "~/composer.phar",
			expectedPath:  "~/composer.phar",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			expander := pathutils.NewHomeExpanderWithProvider(testCase.provider)
			require.Equal(subtest, testCase.expectedPath, expander.Expand(testCase.candidatePath))
		})
	}
}

func TestHomeExpanderResolvesHomeOnce(testInstance *testing.T) {
	lookupCount := 0
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		lookupCount++
		return testHomeDirectoryConstant, nil
	})

	expander.Expand("~/one")
	expander.Expand("~/two")
	require.Equal(testInstance, 1, lookupCount)
}

func TestHomeExpanderExpandAll(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) { return testHomeDirectoryConstant, nil })

	expandedPaths := expander.ExpandAll([]string{" ~/sites/shop ", "", "   ", "/srv/app"})
	require.Equal(testInstance, []string{filepath.Join(testHomeDirectoryConstant, "sites/shop"), "/srv/app"}, expandedPaths)
}

func TestNilHomeExpanderReturnsInput(testInstance *testing.T) {
	var expander *pathutils.HomeExpander
	require.Equal(testInstance, "~/x", expander.Expand("~/x"))
}
