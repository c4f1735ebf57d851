package discovery

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeTXTDefaults(t *testing.T) {
	txt := EncodeTXT(&Info{Name: "kitchen"})

	assert.Equal(t, TXTRecordMap{"v": "1.0", "path": "/api/v1", "name": "kitchen"}, txt)
	assert.Equal(t, []string{"name=kitchen", "path=/api/v1", "v=1.0"}, TXTRecordsToStrings(txt))
}

func TestEncodeTXTPathFollowsVersion(t *testing.T) {
	txt := EncodeTXT(&Info{Version: "2.3", ID: "abc"})

	assert.Equal(t, "/api/v2", txt[TXTKeyPath])
	assert.Equal(t, "abc", txt[TXTKeyID])
	assert.NotContains(t, txt, TXTKeyName)
}

func TestDecodeTXT(t *testing.T) {
	info, err := DecodeTXT(StringsToTXTRecords([]string{"v=1.4", "path=/api/v1", "name=a=b", "flag"}))
	require.NoError(t, err)
	assert.Equal(t, "1.4", info.Version)
	assert.Equal(t, "/api/v1", info.Path)
	assert.Equal(t, "a=b", info.Name)

	tests := []struct {
		name string
		txt  TXTRecordMap
		want error
	}{
		{"missing version", TXTRecordMap{"path": "/api/v1"}, ErrMissingTXT},
		{"empty version", TXTRecordMap{"v": "", "path": "/api/v1"}, ErrMissingTXT},
		{"missing path", TXTRecordMap{"v": "1.0"}, ErrMissingTXT},
		{"newer major", TXTRecordMap{"v": "2.0", "path": "/api/v2"}, ErrIncompatible},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTXT(tt.txt)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestStringsToTXTRecords(t *testing.T) {
	txt := StringsToTXTRecords([]string{"a=1", "b", "", "=x", "c="})
	assert.Equal(t, TXTRecordMap{"a": "1", "b": "", "c": ""}, txt)
}

func TestValidateInstanceName(t *testing.T) {
	assert.NoError(t, ValidateInstanceName("kitchen timer"))
	assert.ErrorIs(t, ValidateInstanceName(""), ErrInvalidInstanceName)
	assert.ErrorIs(t, ValidateInstanceName(strings.Repeat("x", 64)), ErrInvalidInstanceName)
	assert.NoError(t, ValidateInstanceName(strings.Repeat("x", 63)))
}
