package collapse

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"cellsplit/fragment"
)

// layout writes fragment files into fresh directory. Keys are base names,
// header line is added to every file.
func layout(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		content := "% part 0 of " + filepath.Join(dir, "s.m") + "\n" + body
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	// directory may be behind symbolic link
	dir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	return dir
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

var sample = map[string]string{
	"s_gen.m":      "x = 1;\ns_one_1 %cellsplit<1>\ns_two_3 %cellsplit<3>\n",
	"s_one_1.m":    "%% one\nif x\n    s_if_x_2 %cellsplit<2>\nend\n",
	"s_if_x_2.m":   "    y = 2;\n",
	"s_two_3.m":    "%% two\nz = 3;\r\n",
	"unrelated.m":  "keep me\n",
	"s_stale_9.m":  "not referenced\n",
	"s_other_1.md": "different extension\n",
}

const sampleOutput = "x = 1;\n%% one\nif x\n    y = 2;\nend\n%% two\nz = 3;\r\n"

func TestProcess_FromRoot(t *testing.T) {
	dir := layout(t, sample)

	res, err := Process(t.Context(), fragment.FS{}, filepath.Join(dir, "s_gen.m"), Options{}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "s_gen.m"), res.Root)
	assert.Equal(t, filepath.Join(dir, "s.m"), res.Output)
	assert.Equal(t, 3, res.Fragments)
	assert.Equal(t, sampleOutput, readFile(t, res.Output))
}

func TestProcess_FromOutput(t *testing.T) {
	dir := layout(t, sample)

	res, err := Process(t.Context(), fragment.FS{}, filepath.Join(dir, "s.m"), Options{}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "s_gen.m"), res.Root)
	assert.Equal(t, sampleOutput, readFile(t, filepath.Join(dir, "s.m")))
}

func TestProcess_OverwritePolicy(t *testing.T) {
	dir := layout(t, sample)
	out := filepath.Join(dir, "s.m")
	require.NoError(t, os.WriteFile(out, []byte("old\n"), 0644))

	_, err := Process(t.Context(), fragment.FS{}, out, Options{}, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, fragment.ErrIoFailed)
	assert.ErrorIs(t, err, os.ErrExist)
	assert.Equal(t, "old\n", readFile(t, out))

	_, err = Process(t.Context(), fragment.FS{}, out, Options{Overwrite: true}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, sampleOutput, readFile(t, out))
}

func TestProcess_Cleanup(t *testing.T) {
	dir := layout(t, sample)

	_, err := Process(t.Context(), fragment.FS{}, filepath.Join(dir, "s_gen.m"), Options{Cleanup: true}, zaptest.NewLogger(t))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"s.m", "unrelated.m", "s_stale_9.m", "s_other_1.md"}, names)
}

func TestProcess_MissingFragment(t *testing.T) {
	files := map[string]string{
		"s_gen.m":   "s_one_1 %cellsplit<1>\n",
		"s_one_1.m": "a\ns_gone_2 %cellsplit<2>\n",
	}
	dir := layout(t, files)

	_, err := Process(t.Context(), fragment.FS{}, filepath.Join(dir, "s_gen.m"), Options{}, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, fragment.ErrIoFailed)
	assert.ErrorIs(t, err, os.ErrNotExist)

	var fe *fragment.Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "open", fe.Action)
	assert.Equal(t, filepath.Join(dir, "s_gone_2.m"), fe.Target)
}

func TestProcess_MissingRoot(t *testing.T) {
	dir := t.TempDir()

	_, err := Process(t.Context(), fragment.FS{}, filepath.Join(dir, "s_gen.m"), Options{}, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, fragment.ErrIoFailed)

	_, err = Process(t.Context(), fragment.FS{}, filepath.Join(dir, "s.m"), Options{}, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, fragment.ErrIoFailed)

	_, err = Process(t.Context(), fragment.FS{}, filepath.Join(dir, "noext"), Options{}, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, fragment.ErrInvalidPath)
}

func TestProcess_Cycle(t *testing.T) {
	files := map[string]string{
		"s_gen.m":   "s_a_1 %cellsplit<1>\n",
		"s_a_1.m":   "a\ns_b_2 %cellsplit<2>\n",
		"s_b_2.m":   "b\n    s_a_1 %cellsplit<1>\n",
		"s_c_3.m":   "unused\n",
		"s_gen.txt": "unused\n",
	}
	dir := layout(t, files)

	_, err := Process(t.Context(), fragment.FS{}, filepath.Join(dir, "s_gen.m"), Options{Overwrite: true}, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, fragment.ErrCycle)

	var fe *fragment.Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, filepath.Join(dir, "s_a_1.m"), fe.Target)
	assert.Equal(t, filepath.Join(dir, "s_b_2.m"), fe.Text)

	_, err = Scan(t.Context(), fragment.FS{}, filepath.Join(dir, "s_gen.m"))
	assert.ErrorIs(t, err, fragment.ErrCycle)
}

func TestProcess_MarkerLookalikes(t *testing.T) {
	body := "s_a_1 %cellsplit<1> % trailing\n" +
		"disp('s_a_1 %cellsplit<1>')\n" +
		"s a_1 %cellsplit<x>\n" +
		"helper %cellsplit<1>\n" +
		"s_a_1 %cellsplit<2>\n" +
		"s_../up_1 %cellsplit<1>\n"
	dir := layout(t, map[string]string{
		"s_gen.m":  body,
		"helper.m": "foreign\n",
		"s_a_1.m":  "stale\n",
	})

	res, err := Process(t.Context(), fragment.FS{}, filepath.Join(dir, "s_gen.m"), Options{}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Fragments)
	assert.Equal(t, body, readFile(t, res.Output))
}

func TestProcess_HeaderOnly(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "s_gen.m"), []byte("% part 0 of s.m"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "e_gen.m"), nil, 0644))

	for _, root := range []string{"s_gen.m", "e_gen.m"} {
		res, err := Process(t.Context(), fragment.FS{}, filepath.Join(dir, root), Options{}, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.Empty(t, readFile(t, res.Output))
	}
}

func TestProcess_Canceled(t *testing.T) {
	dir := layout(t, sample)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := Process(ctx, fragment.FS{}, filepath.Join(dir, "s_gen.m"), Options{}, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcess_UnterminatedLines(t *testing.T) {
	dir := layout(t, map[string]string{
		"s_gen.m":   "a\r\ns_one_1 %cellsplit<1>\nb",
		"s_one_1.m": "c",
	})

	res, err := Process(t.Context(), fragment.FS{}, filepath.Join(dir, "s_gen.m"), Options{}, zaptest.NewLogger(t))
	require.NoError(t, err)
	// only the last line of output may stay unterminated
	assert.Equal(t, "a\r\nc\nb", readFile(t, res.Output))
}
