package discovery

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mzt-timers/mzt-go/pkg/version"
)

// TXTRecordMap holds TXT record key/value pairs.
type TXTRecordMap map[string]string

// EncodeTXT builds the TXT records announced for info. Empty optional
// fields are left out.
func EncodeTXT(info *Info) TXTRecordMap {
	v := info.Version
	if v == "" {
		v = version.Current
	}
	path := info.Path
	if path == "" {
		path = version.CurrentAPIPath()
		if fv, err := version.Parse(v); err == nil {
			path = version.APIPath(fv.Major)
		}
	}

	txt := TXTRecordMap{
		TXTKeyVersion: v,
		TXTKeyPath:    path,
	}
	if info.Name != "" {
		txt[TXTKeyName] = info.Name
	}
	if info.ID != "" {
		txt[TXTKeyID] = info.ID
	}
	return txt
}

// DecodeTXT reads the records of a discovered service. The version and
// path keys are required and the version must be compatible with
// version.Current.
func DecodeTXT(txt TXTRecordMap) (*Info, error) {
	v, ok := txt[TXTKeyVersion]
	if !ok || v == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingTXT, TXTKeyVersion)
	}
	if err := version.Check(v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompatible, err)
	}

	path, ok := txt[TXTKeyPath]
	if !ok || path == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingTXT, TXTKeyPath)
	}

	return &Info{
		Version: v,
		Path:    path,
		Name:    txt[TXTKeyName],
		ID:      txt[TXTKeyID],
	}, nil
}

// TXTRecordsToStrings converts txt to sorted "key=value" strings.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

// StringsToTXTRecords parses "key=value" strings. A string without "="
// becomes a key with an empty value.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap, len(strs))
	for _, s := range strs {
		k, v, _ := strings.Cut(s, "=")
		if k != "" {
			txt[k] = v
		}
	}
	return txt
}

// ValidateInstanceName checks that name fits in a DNS label.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidInstanceName)
	}
	if len(name) > MaxInstanceNameLen {
		return fmt.Errorf("%w: %d bytes, at most %d allowed", ErrInvalidInstanceName, len(name), MaxInstanceNameLen)
	}
	return nil
}
