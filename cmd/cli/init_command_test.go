package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitCommandWritesDefaultConfiguration(testInstance *testing.T) {
	targetPath := filepath.Join(testInstance.TempDir(), "nested", "config.yaml")

	testCases := []struct {
		name          string
		arguments     []string
		expectedError error
	}{
		{name: "first_write", arguments: []string{"init", targetPath}},
		{name: "refuses_overwrite", arguments: []string{"init", targetPath}, expectedError: ErrConfigurationFileExists},
		{name: "force_overwrites", arguments: []string{"init", "--force", targetPath}},
		{name: "force_yes_overwrites", arguments: []string{"init", "--force", "yes", targetPath}},
		{name: "force_no_refuses", arguments: []string{"init", "--force", "no", targetPath}, expectedError: ErrConfigurationFileExists},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			application, outputBuffer := newIsolatedApplication(subtest, testCase.arguments...)

			executionError := application.Execute()
			if testCase.expectedError != nil {
				require.ErrorIs(subtest, executionError, testCase.expectedError)
				return
			}
			require.NoError(subtest, executionError)
			require.Contains(subtest, outputBuffer.String(), targetPath)

			writtenContent, readError := os.ReadFile(targetPath)
			require.NoError(subtest, readError)
			embeddedContent, _ := EmbeddedDefaultConfiguration()
			require.Equal(subtest, embeddedContent, writtenContent)
		})
	}
}

func TestValidateConfigurationContent(testInstance *testing.T) {
	embeddedContent, configurationType := EmbeddedDefaultConfiguration()
	require.Equal(testInstance, "yaml", configurationType)
	require.NoError(testInstance, ValidateConfigurationContent(embeddedContent))
	require.Error(testInstance, ValidateConfigurationContent([]byte("- just\n- a list\n")))
	require.Error(testInstance, ValidateConfigurationContent([]byte("audit: [unterminated")))
}
