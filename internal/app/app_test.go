package app

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cellscope/internal/appshell"
	"cellscope/internal/writers"
	"cellscope/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errb bytes.Buffer
	code = Run(args, &out, &errb)
	return code, out.String(), errb.String()
}

func writePNG(t *testing.T, path string, squares int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 80, 40))
	for i := range img.Pix {
		img.Pix[i] = 255
		if i%4 != 3 {
			img.Pix[i] = 0
		}
	}
	for i := 0; i < squares; i++ {
		for y := 10; y < 25; y++ {
			for x := 5 + i*25; x < 20+i*25; x++ {
				img.Set(x, y, color.White)
			}
		}
	}
	fh, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(fh, img))
	require.NoError(t, fh.Close())
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	fh, err := os.Open(path)
	require.NoError(t, err)
	defer fh.Close()
	rows, err := csv.NewReader(fh).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestVersion(t *testing.T) {
	code, out, _ := run(t, "version")
	assert.Equal(t, appshell.ExitOK, code)
	assert.Equal(t, "cellscope version dev\n", out)

	code, out, _ = run(t, "--version")
	assert.Equal(t, appshell.ExitOK, code)
	assert.Contains(t, out, "cellscope version")
}

func TestUnknownCommandAndFlag(t *testing.T) {
	code, _, errOut := run(t, "frobnicate")
	assert.Equal(t, appshell.ExitUsage, code)
	assert.Contains(t, errOut, "cellscope --help")

	code, _, _ = run(t, "run", "--no-such-flag")
	assert.Equal(t, appshell.ExitUsage, code)
}

func TestCatalog_Text(t *testing.T) {
	code, out, _ := run(t, "catalog")
	require.Equal(t, appshell.ExitOK, code)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "MICROBE"))
	assert.Contains(t, lines[1], "Streptococcus")
	assert.Contains(t, lines[1], "TCAGCAGCAGCTAGCACTAATGGCAT")
}

func TestCatalog_JSON(t *testing.T) {
	code, out, _ := run(t, "catalog", "--format", "json")
	require.Equal(t, appshell.ExitOK, code)
	var got []api.MicrobeV1
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 5)
	assert.Equal(t, api.MicrobeV1{
		Name:              "Streptococcus",
		Disease:           "Strep Throat",
		Symptoms:          "Sore throat, fever",
		Risk:              "Moderate",
		DNASequence:       "ATGCCATTAGTGCTAGCTGCTGCTGA",
		ReverseComplement: "TCAGCAGCAGCTAGCACTAATGGCAT",
	}, got[0])
}

func TestCatalog_JSONLWithoutSequences(t *testing.T) {
	code, out, _ := run(t, "catalog", "-f", "jsonl", "--no-sequences")
	require.Equal(t, appshell.ExitOK, code)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.NotContains(t, out, "dna_sequence")
	var m api.MicrobeV1
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &m))
	assert.Equal(t, "Candida", m.Name)
}

func TestCatalog_BadFormat(t *testing.T) {
	code, _, errOut := run(t, "catalog", "--format", "xml")
	assert.Equal(t, appshell.ExitUsage, code)
	assert.Contains(t, errOut, "--format")
}

func TestRun_FolderSession(t *testing.T) {
	dir := t.TempDir()
	frames := filepath.Join(dir, "frames")
	require.NoError(t, os.Mkdir(frames, 0o755))
	writePNG(t, filepath.Join(frames, "001.png"), 1)
	writePNG(t, filepath.Join(frames, "002.png"), 2)
	writePNG(t, filepath.Join(frames, "003.png"), 0)
	logPath := filepath.Join(dir, "log.csv")
	jsonlPath := filepath.Join(dir, "log.jsonl")

	code, out, errOut := run(t, "run",
		"--source", "folder", "--dir", frames,
		"--log", logPath, "--jsonl", jsonlPath,
		"--selector", "fixed", "--names", "Candida",
		"--no-quit-key", "--log-level", "error",
	)
	require.Equal(t, appshell.ExitOK, code, errOut)
	assert.Contains(t, out, "Final Report:\nMost Common Microbe: Candida\nDisease: Oral Thrush\nRisk: Moderate\n")
	assert.Contains(t, out, "Frames: 3\n")

	rows := readCSV(t, logPath)
	require.Len(t, rows, 4)
	assert.Equal(t, writers.CSVHeader, rows[0])
	for _, r := range rows[1:] {
		assert.Equal(t, "Candida", r[2])
		assert.Equal(t, "Oral Thrush", r[3])
	}
	assert.Equal(t, "0", rows[3][1])

	raw, err := os.ReadFile(jsonlPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3)
	var rep api.ReportV1
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rep))
	assert.Equal(t, 1, rep.Frame)
	assert.NotEmpty(t, rep.SessionID)
}

func TestRun_MaxFramesAndStyled(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"a.png", "b.png", "c.png"} {
		writePNG(t, filepath.Join(dir, n), 1)
	}
	logPath := filepath.Join(t.TempDir(), "log.csv")
	code, out, errOut := run(t, "run", "--source", "folder", "-d", dir, "-n", "2",
		"-o", logPath, "--no-quit-key", "--styled", "--seed", "7", "--log-level", "error")
	require.Equal(t, appshell.ExitOK, code, errOut)
	assert.Contains(t, out, "Final Report")
	assert.Len(t, readCSV(t, logPath), 3)
}

func TestRun_EmptyFolderReportsNoDetections(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(t.TempDir(), "log.csv")
	code, out, errOut := run(t, "run", "--source", "folder", "--dir", dir,
		"--log", logPath, "--no-quit-key", "--log-level", "error")
	require.Equal(t, appshell.ExitOK, code, errOut)
	assert.Equal(t, "No microbes detected.\n", out)
	assert.Equal(t, [][]string{writers.CSVHeader}, readCSV(t, logPath))
}

func TestRun_InvalidConfiguration(t *testing.T) {
	code, out, errOut := run(t, "run", "--source", "folder", "--no-quit-key")
	assert.Equal(t, appshell.ExitUsage, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "capture.dir is required")

	code, _, errOut = run(t, "run", "--selector", "sequence", "--no-quit-key")
	assert.Equal(t, appshell.ExitUsage, code)
	assert.Contains(t, errOut, "selector.names")
}

func TestRun_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	frames := filepath.Join(dir, "frames")
	require.NoError(t, os.Mkdir(frames, 0o755))
	writePNG(t, filepath.Join(frames, "f.png"), 1)
	logPath := filepath.Join(dir, "out.csv")
	cfg := filepath.Join(dir, "cellscope.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(`
capture:
  source: folder
  dir: `+frames+`
log:
  path: `+logPath+`
selector:
  kind: sequence
  names: [E. coli]
display:
  quit_key: false
logging:
  level: error
`), 0o644))

	code, out, errOut := run(t, "run", "-c", cfg)
	require.Equal(t, appshell.ExitOK, code, errOut)
	assert.Contains(t, out, "Most Common Microbe: E. coli")
	rows := readCSV(t, logPath)
	require.Len(t, rows, 2)
	assert.Equal(t, "ATGCCTGCGTACGGCTAGTCAGAGCT", rows[1][6])
}

func TestRun_UnknownConfigKey(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("capture:\n  sorce: folder\n"), 0o644))
	code, _, _ := run(t, "run", "-c", cfg)
	assert.Equal(t, appshell.ExitUsage, code)
}

func TestRun_MissingFolderIsRuntimeError(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	code, _, errOut := run(t, "run", "--source", "folder", "--dir", missing,
		"--log", filepath.Join(t.TempDir(), "log.csv"), "--no-quit-key", "--log-level", "error")
	assert.Equal(t, appshell.ExitRuntime, code)
	assert.Contains(t, errOut, "open capture")
}
