package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"

	apperrors "github.com/202510804-cloud/polar-plant-dashboard/internal/errors"
)

func TestNormalizeName(t *testing.T) {
	composed := "송도고"
	decomposed := norm.NFD.String(composed)

	require.NotEqual(t, composed, decomposed, "fixture must actually decompose")
	assert.Equal(t, composed, NormalizeName(decomposed))
	assert.Equal(t, composed, NormalizeName(composed))
}

func TestResolveName(t *testing.T) {
	composed := "송도고_환경데이터.csv"
	decomposed := norm.NFD.String(composed)

	tests := []struct {
		name     string
		onDisk   []string
		target   string
		wantName string
		wantOK   bool
	}{
		{
			name:     "exact match",
			onDisk:   []string{"other.csv", composed},
			target:   composed,
			wantName: composed,
			wantOK:   true,
		},
		{
			name:     "NFD entry matches NFC target",
			onDisk:   []string{decomposed},
			target:   composed,
			wantName: decomposed,
			wantOK:   true,
		},
		{
			name:     "NFC entry matches NFD target",
			onDisk:   []string{composed},
			target:   decomposed,
			wantName: composed,
			wantOK:   true,
		},
		{
			name:   "no prefix matching",
			onDisk: []string{composed},
			target: "송도고",
			wantOK: false,
		},
		{
			name:   "absent",
			onDisk: []string{"unrelated.txt"},
			target: composed,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, name := range tt.onDisk {
				require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
			}
			entries, err := os.ReadDir(dir)
			require.NoError(t, err)

			got, ok := ResolveName(entries, tt.target)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantName, got)
			}
		})
	}
}

func TestDiscovery_Resolve(t *testing.T) {
	dir := t.TempDir()
	decomposed := norm.NFD.String("하늘고_환경데이터.csv")
	require.NoError(t, os.WriteFile(filepath.Join(dir, decomposed), []byte("x"), 0o644))

	d := NewDiscovery(dir)
	require.NoError(t, d.CheckBase())

	path, ok, err := d.Resolve("하늘고_환경데이터.csv")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, decomposed), path)

	_, ok, err = d.Resolve("없는파일.csv")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDiscovery_CheckBase_Missing(t *testing.T) {
	d := NewDiscovery(filepath.Join(t.TempDir(), "nope"))

	err := d.CheckBase()
	require.Error(t, err)
	assert.True(t, apperrors.IsDirectoryMissing(err))
}

func TestDiscovery_CheckBase_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	err := NewDiscovery(path).CheckBase()
	require.Error(t, err)
	assert.True(t, apperrors.IsDirectoryMissing(err))
}
