package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-viper/mapstructure/v2"
)

const (
	advisoriesKeyConstant               = "advisories"
	advisoryReportKeyConstant           = "advisory-report"
	advisoryTitleFieldConstant          = "title"
	advisoryCVEFieldConstant            = "cve"
	advisoryLinkFieldConstant           = "link"
	advisorySeverityFieldConstant       = "severity"
	advisoryAffectedFieldConstant       = "affectedVersions"
	advisoryTitleAlternateConstant      = "advisoryTitle"
	advisoryCVEAlternateConstant        = "cveID"
	advisoryLinkAlternateConstant       = "advisoryLink"
	advisoryAffectedAlternateConstant   = "affetedVersionsConstraint"
	unknownAdvisoryTitleConstant        = "Unknown"
	unparseableOutputMessageConstant    = "Could not parse JSON output from composer audit."
	trailingDataErrorMessageConstant    = "unexpected data after JSON value"
	unexpectedDelimiterTemplateConstant = "unexpected JSON delimiter %v"
	advisoryDecodeErrorTemplateConstant = "decode advisory fields: %w"
	rawOutputLimitConstant              = 5000
)

// ErrUnparseableOutput indicates composer audit output that is not a JSON object or array.
var ErrUnparseableOutput = errors.New(unparseableOutputMessageConstant)

// advisoryFieldAlias maps a normalized field to the primary and alternate keys composer has used for it.
type advisoryFieldAlias struct {
	field     string
	primary   string
	alternate string
}

var advisoryFieldAliases = []advisoryFieldAlias{
	{field: advisoryTitleFieldConstant, primary: advisoryTitleFieldConstant, alternate: advisoryTitleAlternateConstant},
	{field: advisoryCVEFieldConstant, primary: advisoryCVEFieldConstant, alternate: advisoryCVEAlternateConstant},
	{field: advisoryLinkFieldConstant, primary: advisoryLinkFieldConstant, alternate: advisoryLinkAlternateConstant},
	{field: advisorySeverityFieldConstant, primary: advisorySeverityFieldConstant},
	{field: advisoryAffectedFieldConstant, primary: advisoryAffectedFieldConstant, alternate: advisoryAffectedAlternateConstant},
}

type advisoryFields struct {
	Title            string `mapstructure:"title"`
	CVE              string `mapstructure:"cve"`
	Link             string `mapstructure:"link"`
	Severity         string `mapstructure:"severity"`
	AffectedVersions string `mapstructure:"affectedVersions"`
}

// ParseAuditOutput flattens composer audit JSON into advisory records in package-then-item order.
// It returns ErrUnparseableOutput when the text is not JSON or its root is neither an object nor an array.
func ParseAuditOutput(rawOutput string) ([]AdvisoryRecord, error) {
	root, decodeError := decodeOrderedJSON(rawOutput)
	if decodeError != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseableOutput, decodeError)
	}
	if root.kind != jsonObjectKind && root.kind != jsonArrayKind {
		return nil, ErrUnparseableOutput
	}

	advisoriesNode := locateAdvisories(root)
	if advisoriesNode == nil {
		return []AdvisoryRecord{}, nil
	}

	records := make([]AdvisoryRecord, 0)
	for _, packageEntry := range advisoriesNode.entries() {
		for _, itemEntry := range packageEntry.value.entries() {
			if itemEntry.value.kind != jsonObjectKind {
				continue
			}
			record, recordError := buildAdvisoryRecord(packageEntry.key, itemEntry.value)
			if recordError != nil {
				return nil, recordError
			}
			records = append(records, record)
		}
	}
	return records, nil
}

// TruncateRawOutput keeps at most the first 5000 characters of the raw output.
// Invalid UTF-8 bytes count as one character each and are kept as they are.
func TruncateRawOutput(rawOutput string) string {
	byteOffset := 0
	for characterCount := 0; characterCount < rawOutputLimitConstant; characterCount++ {
		if byteOffset >= len(rawOutput) {
			return rawOutput
		}
		_, characterWidth := utf8.DecodeRuneInString(rawOutput[byteOffset:])
		byteOffset += characterWidth
	}
	return rawOutput[:byteOffset]
}

func locateAdvisories(root *jsonNode) *jsonNode {
	if advisories := root.member(advisoriesKeyConstant); advisories != nil && advisories.kind != jsonNullKind {
		return advisories
	}
	report := root.member(advisoryReportKeyConstant)
	if report == nil {
		return nil
	}
	if advisories := report.member(advisoriesKeyConstant); advisories != nil && advisories.kind != jsonNullKind {
		return advisories
	}
	return nil
}

func buildAdvisoryRecord(packageName string, advisory *jsonNode) (AdvisoryRecord, error) {
	resolvedFields := make(map[string]any, len(advisoryFieldAliases))
	for _, alias := range advisoryFieldAliases {
		if value, present := advisory.scalarMember(alias.primary); present {
			resolvedFields[alias.field] = value
			continue
		}
		if len(alias.alternate) == 0 {
			continue
		}
		if value, present := advisory.scalarMember(alias.alternate); present {
			resolvedFields[alias.field] = value
		}
	}

	var fields advisoryFields
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &fields,
	})
	if decoderError != nil {
		return AdvisoryRecord{}, fmt.Errorf(advisoryDecodeErrorTemplateConstant, decoderError)
	}
	if decodeError := decoder.Decode(resolvedFields); decodeError != nil {
		return AdvisoryRecord{}, fmt.Errorf(advisoryDecodeErrorTemplateConstant, decodeError)
	}

	if len(fields.Title) == 0 {
		fields.Title = unknownAdvisoryTitleConstant
	}

	return AdvisoryRecord{
		Package:          packageName,
		Title:            fields.Title,
		CVE:              fields.CVE,
		Link:             fields.Link,
		Severity:         fields.Severity,
		AffectedVersions: fields.AffectedVersions,
	}, nil
}

type jsonNodeKind int

const (
	jsonNullKind jsonNodeKind = iota
	jsonScalarKind
	jsonObjectKind
	jsonArrayKind
)

type jsonEntry struct {
	key   string
	value *jsonNode
}

// jsonNode is a decoded JSON value that remembers object key order.
// Repeated object keys keep their first position and their last value.
type jsonNode struct {
	kind    jsonNodeKind
	scalar  any
	members []jsonEntry
	index   map[string]int
	items   []*jsonNode
}

func (node *jsonNode) member(key string) *jsonNode {
	if node == nil || node.kind != jsonObjectKind {
		return nil
	}
	position, found := node.index[key]
	if !found {
		return nil
	}
	return node.members[position].value
}

// scalarMember returns a string, json.Number or bool member. Null, nested, false and empty string values are absent.
func (node *jsonNode) scalarMember(key string) (any, bool) {
	value := node.member(key)
	if value == nil || value.kind != jsonScalarKind {
		return nil, false
	}
	switch scalar := value.scalar.(type) {
	case string:
		if len(scalar) == 0 {
			return nil, false
		}
	case bool:
		if !scalar {
			return nil, false
		}
	}
	return value.scalar, true
}

// entries lists object members in key order or array items keyed by index. Scalars and null have none.
func (node *jsonNode) entries() []jsonEntry {
	switch node.kind {
	case jsonObjectKind:
		return node.members
	case jsonArrayKind:
		entries := make([]jsonEntry, 0, len(node.items))
		for itemIndex, item := range node.items {
			entries = append(entries, jsonEntry{key: strconv.Itoa(itemIndex), value: item})
		}
		return entries
	default:
		return nil
	}
}

func decodeOrderedJSON(rawText string) (*jsonNode, error) {
	decoder := json.NewDecoder(strings.NewReader(rawText))
	decoder.UseNumber()

	root, decodeError := decodeJSONNode(decoder)
	if decodeError != nil {
		return nil, decodeError
	}
	if _, trailingError := decoder.Token(); !errors.Is(trailingError, io.EOF) {
		return nil, errors.New(trailingDataErrorMessageConstant)
	}
	return root, nil
}

func decodeJSONNode(decoder *json.Decoder) (*jsonNode, error) {
	token, tokenError := decoder.Token()
	if tokenError != nil {
		return nil, tokenError
	}

	switch typedToken := token.(type) {
	case json.Delim:
		switch typedToken {
		case '{':
			return decodeJSONObject(decoder)
		case '[':
			return decodeJSONArray(decoder)
		default:
			return nil, fmt.Errorf(unexpectedDelimiterTemplateConstant, typedToken)
		}
	case nil:
		return &jsonNode{kind: jsonNullKind}, nil
	default:
		return &jsonNode{kind: jsonScalarKind, scalar: typedToken}, nil
	}
}

func decodeJSONObject(decoder *json.Decoder) (*jsonNode, error) {
	node := &jsonNode{kind: jsonObjectKind, index: map[string]int{}}
	for decoder.More() {
		keyToken, keyError := decoder.Token()
		if keyError != nil {
			return nil, keyError
		}
		key, _ := keyToken.(string)

		value, valueError := decodeJSONNode(decoder)
		if valueError != nil {
			return nil, valueError
		}

		if position, repeated := node.index[key]; repeated {
			node.members[position].value = value
			continue
		}
		node.index[key] = len(node.members)
		node.members = append(node.members, jsonEntry{key: key, value: value})
	}
	if _, closeError := decoder.Token(); closeError != nil {
		return nil, closeError
	}
	return node, nil
}

func decodeJSONArray(decoder *json.Decoder) (*jsonNode, error) {
	node := &jsonNode{kind: jsonArrayKind}
	for decoder.More() {
		item, itemError := decodeJSONNode(decoder)
		if itemError != nil {
			return nil, itemError
		}
		node.items = append(node.items, item)
	}
	if _, closeError := decoder.Token(); closeError != nil {
		return nil, closeError
	}
	return node, nil
}
