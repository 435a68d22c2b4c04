package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"vincit.fi/image-metadata/api/apitype"
	"vincit.fi/image-metadata/backend/folderpaths"
	"vincit.fi/image-metadata/backend/imageloader"
	"vincit.fi/image-metadata/common/pngtext"
)

type testWorkspace struct {
	root       string
	inputDir   string
	outputDir  string
	configPath string
}

func newTestWorkspace(t *testing.T, withHistory bool) *testWorkspace {
	root := t.TempDir()
	workspace := &testWorkspace{
		root:       root,
		inputDir:   filepath.Join(root, "input"),
		outputDir:  filepath.Join(root, "output"),
		configPath: filepath.Join(root, "imgmeta.yaml"),
	}
	require.Nil(t, os.MkdirAll(workspace.inputDir, 0o755))

	config := fmt.Sprintf("input_dir: %s\noutput_dir: %s\ntemp_dir: %s\nlog_level: debug\n",
		workspace.inputDir, workspace.outputDir, filepath.Join(root, "temp"))
	if withHistory {
		config += fmt.Sprintf("history_db: %s\n", filepath.Join(root, "history.db"))
	}
	require.Nil(t, os.WriteFile(workspace.configPath, []byte(config), 0o644))
	return workspace
}

func (s *testWorkspace) addImage(t *testing.T, name string, entries ...pngtext.Entry) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 100), G: uint8(y * 200), B: 50, A: 255})
		}
	}
	buffer := &bytes.Buffer{}
	require.Nil(t, pngtext.Encode(buffer, img, entries, 4))
	require.Nil(t, os.WriteFile(filepath.Join(s.inputDir, name), buffer.Bytes(), 0o644))
}

func (s *testWorkspace) execute(args ...string) (string, error) {
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--config", s.configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestInputsCommand(t *testing.T) {
	a := assert.New(t)
	workspace := newTestWorkspace(t, false)
	workspace.addImage(t, "b.png")
	workspace.addImage(t, "a.png")

	out, err := workspace.execute("inputs")
	a.Nil(err)
	a.Equal("a.png\nb.png\n", out)
}

func TestLoadCommand(t *testing.T) {
	a := assert.New(t)
	r := require.New(t)
	workspace := newTestWorkspace(t, false)
	workspace.addImage(t, "image.png", pngtext.Entry{Key: "prompt", Value: `{"1": {}}`})

	t.Run("JSON", func(t *testing.T) {
		out, err := workspace.execute("load", "image.png")
		r.Nil(err)

		var result loadResult
		r.Nil(json.Unmarshal([]byte(out), &result))
		a.Equal("image.png", result.Image)
		a.Equal([4]int{1, 2, 3, 3}, result.Shape)
		a.Equal(apitype.Metadata{"prompt": `{"1": {}}`}, result.Metadata)
	})
	t.Run("YAML", func(t *testing.T) {
		out, err := workspace.execute("load", "image.png [input]", "--format", "yaml")
		r.Nil(err)

		var result loadResult
		r.Nil(yaml.Unmarshal([]byte(out), &result))
		a.Equal([4]int{1, 2, 3, 3}, result.Shape)
		a.Equal(`{"1": {}}`, result.Metadata["prompt"])
	})
	t.Run("Unknown format", func(t *testing.T) {
		_, err := workspace.execute("load", "image.png", "--format", "xml")
		a.NotNil(err)
	})
	t.Run("Missing image", func(t *testing.T) {
		_, err := workspace.execute("load", "missing.png")
		a.True(errors.Is(err, os.ErrNotExist))
	})
	t.Run("Missing argument", func(t *testing.T) {
		_, err := workspace.execute("load")
		a.NotNil(err)
	})
}

func TestCopyCommand(t *testing.T) {
	a := assert.New(t)
	r := require.New(t)
	workspace := newTestWorkspace(t, true)
	workspace.addImage(t, "image.png", pngtext.Entry{Key: "prompt", Value: "original"})

	metadataFile := filepath.Join(workspace.root, "extra.yaml")
	r.Nil(os.WriteFile(metadataFile, []byte("workflow:\n  nodes: [1, 2]\nprompt: replaced\n"), 0o644))

	out, err := workspace.execute("copy", "image.png",
		"--prefix", "copied", "--subdir", "run",
		"--metadata", metadataFile,
		"--set", "seed=42", "--set", "prompt=final")
	r.Nil(err)

	var results []apitype.SavedImage
	r.Nil(json.Unmarshal([]byte(out), &results))
	r.Len(results, 1)
	a.Equal(apitype.SavedImage{Filename: "copied_00001_.png", Subfolder: "run", Type: apitype.OutputType}, results[0])

	paths := folderpaths.NewFolderPaths(workspace.inputDir, workspace.outputDir, "")
	_, metadata, err := imageloader.NewImageLoader(paths, nil).LoadImageWithMetadata("run/copied_00001_.png [output]")
	r.Nil(err)
	a.Equal(apitype.Metadata{
		"prompt":   "final",
		"seed":     "42",
		"workflow": `{"nodes":[1,2]}`,
	}, metadata)

	t.Run("History records the copy", func(t *testing.T) {
		out, err := workspace.execute("history")
		r.Nil(err)

		var entries []apitype.HistoryEntry
		r.Nil(json.Unmarshal([]byte(out), &entries))
		r.Len(entries, 1)
		a.Equal("copied_00001_.png", entries[0].Image.Filename)
		a.Equal(filepath.Join(workspace.outputDir, "run", "copied_00001_.png"), entries[0].Path)
		a.Equal("42", entries[0].Metadata["seed"])
	})
	t.Run("Second copy continues the counter", func(t *testing.T) {
		out, err := workspace.execute("copy", "image.png", "--prefix", "copied", "--subdir", "run")
		r.Nil(err)
		var results []apitype.SavedImage
		r.Nil(json.Unmarshal([]byte(out), &results))
		a.Equal("copied_00002_.png", results[0].Filename)
	})
	t.Run("Invalid assignment", func(t *testing.T) {
		_, err := workspace.execute("copy", "image.png", "--set", "no-value")
		a.NotNil(err)
	})
}

func TestHistoryCommand_NotConfigured(t *testing.T) {
	a := assert.New(t)
	workspace := newTestWorkspace(t, false)

	_, err := workspace.execute("history")
	a.True(errors.Is(err, errNoHistory))
}

func TestRootCommand_Config(t *testing.T) {
	a := assert.New(t)
	workspace := newTestWorkspace(t, false)
	workspace.addImage(t, "a.png")

	t.Run("Flags override the config file", func(t *testing.T) {
		other := t.TempDir()
		out, err := workspace.execute("inputs", "--input-dir", other)
		a.Nil(err)
		a.Equal("", out)
	})
	t.Run("Explicit config file must exist", func(t *testing.T) {
		cmd := NewRootCommand()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "inputs"})
		a.NotNil(cmd.Execute())
	})
}

func TestParseAssignments(t *testing.T) {
	a := assert.New(t)

	values, err := parseAssignments([]string{"a=1", "b=x=y", "c="})
	a.Nil(err)
	a.Equal(map[string]string{"a": "1", "b": "x=y", "c": ""}, values)

	_, err = parseAssignments([]string{"=1"})
	a.NotNil(err)
	_, err = parseAssignments([]string{"plain"})
	a.NotNil(err)
}
