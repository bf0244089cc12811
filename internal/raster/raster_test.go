package raster

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/mixradar/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGrid() *domain.Grid {
	g := domain.NewGrid(3, 2)
	g.Fill(domain.White)
	g.Set(0, 0, domain.RGB(4, 70, 28))
	g.Set(2, 1, domain.RGB(0, 87, 138))
	return g
}

func TestWriteFileAndDecode(t *testing.T) {
	for _, f := range []Format{FormatPNG, FormatBMP, FormatTIFF} {
		t.Run(string(f), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out."+f.Ext())
			src := sampleGrid()

			require.NoError(t, WriteFile(path, src.Image(), f))

			got, err := DecodeFile(path)
			require.NoError(t, err)
			assert.Equal(t, 3, got.Width())
			assert.Equal(t, 2, got.Height())
			assert.Equal(t, domain.RGB(4, 70, 28), got.At(0, 0))
			assert.Equal(t, domain.RGB(0, 87, 138), got.At(2, 1))
			assert.Equal(t, domain.White, got.At(1, 1))
		})
	}
}

func TestWriteFile_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mixradar_0.png")

	require.NoError(t, WriteFile(path, sampleGrid().Image(), FormatPNG))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "mixradar_0.png", entries[0].Name())
}

func TestWriteFile_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.png")

	err := WriteFile(path, sampleGrid().Image(), FormatPNG)
	require.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteFile_UnsupportedFormatCleansUp(t *testing.T) {
	dir := t.TempDir()

	err := WriteFile(filepath.Join(dir, "out.xyz"), sampleGrid().Image(), Format("xyz"))
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDecode_ConvertsPaletted(t *testing.T) {
	pal := color.Palette{color.RGBA{0, 87, 138, 255}, color.RGBA{255, 255, 255, 255}}
	img := image.NewPaletted(image.Rect(5, 5, 7, 6), pal)
	img.SetColorIndex(5, 5, 0)
	img.SetColorIndex(6, 5, 1)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img, FormatPNG))

	g, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Width())
	assert.Equal(t, domain.RGB(0, 87, 138), g.At(0, 0))
	assert.Equal(t, domain.White, g.At(1, 0))
}

func TestDecode_Garbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not an image")))
	require.Error(t, err)
}

func TestDecodeFile_Missing(t *testing.T) {
	_, err := DecodeFile(filepath.Join(t.TempDir(), "nope.png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.png")
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, f)

	f, err = ParseFormat("TIF")
	require.NoError(t, err)
	assert.Equal(t, FormatTIFF, f)

	_, err = ParseFormat("jpeg")
	require.Error(t, err)
}

func TestListDir_SortedRegularFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"simradar_00200.png", "simradar_00000.png", ".hidden", "simradar_00100.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o700))

	files, err := ListDir(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "simradar_00000.png"),
		filepath.Join(dir, "simradar_00100.png"),
		filepath.Join(dir, "simradar_00200.png"),
	}, files)
}

func TestListDir_Empty(t *testing.T) {
	files, err := ListDir(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, files)
}
