package services

import (
	"fmt"
	"strconv"
	"strings"

	"equipment-store/pkg/constants"
	apperrors "equipment-store/pkg/errors"
)

// LabelPrefix returns the first LabelPrefixLength characters of the type name.
func LabelPrefix(typeName string) string {
	runes := []rune(typeName)
	if len(runes) > constants.LabelPrefixLength {
		runes = runes[:constants.LabelPrefixLength]
	}
	return string(runes)
}

// ParseLabelCounter reads the numeric suffix after the last '-'.
func ParseLabelCounter(label string) (int, error) {
	idx := strings.LastIndex(label, "-")
	if idx < 0 || idx == len(label)-1 {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrMalformedLabel, label)
	}
	n, err := strconv.Atoi(label[idx+1:])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrMalformedLabel, label)
	}
	return n, nil
}

// LabelPrefixOf returns the part of a label before its last '-'.
func LabelPrefixOf(label string) string {
	if idx := strings.LastIndex(label, "-"); idx >= 0 {
		return label[:idx]
	}
	return label
}

// FormatLabel renders "<prefix>-<counter>", e.g. "Lap-000001".
func FormatLabel(typeName string, counter int) string {
	return fmt.Sprintf("%s-%0*d", LabelPrefix(typeName), constants.LabelCounterWidth, counter)
}

// NextLabel computes the label for a new unit of typeName given the label of
// the most recently created unit of that type ("" when there is none).
func NextLabel(typeName string, lastLabel string) (string, error) {
	if lastLabel == "" {
		return FormatLabel(typeName, 1), nil
	}
	counter, err := ParseLabelCounter(lastLabel)
	if err != nil {
		return "", err
	}
	return FormatLabel(typeName, counter+1), nil
}
