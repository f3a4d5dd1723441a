package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/ifcgeom/pkg/config"
	"github.com/chazu/ifcgeom/pkg/errors"
)

// run executes the root command with args and returns its standard output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestKernelsCommand(t *testing.T) {
	out, err := run(t, "kernels")
	if err != nil {
		t.Fatalf("kernels: %v", err)
	}
	if out != "poly\nsdfx\n" {
		t.Errorf("kernels output = %q, want poly and sdfx", out)
	}
}

func TestValidateCommand(t *testing.T) {
	out, err := run(t, "validate", writeSample(t))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, "no structural errors") {
		t.Errorf("validate output = %q", out)
	}
}

func TestValidateCommandMissingFile(t *testing.T) {
	_, err := run(t, "validate", filepath.Join(t.TempDir(), "missing.ifc"))
	if err == nil {
		t.Fatal("expected an error for a missing input file")
	}
}

func TestConvertCommand(t *testing.T) {
	input := writeSample(t)
	output := filepath.Join(t.TempDir(), "doors.obj")
	_, err := run(t, "convert", input, output,
		"--kernel", config.KernelPoly, "-j", "2", "--include", "entities IfcDoor",
		"--naming", "guid", "--precision", "8", "-q")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "g 0t6l$errw2VRY9sSsG3flX\n") {
		t.Errorf("door group missing:\n%s", data)
	}
	if strings.Count(string(data), "\ng ") != 1 {
		t.Error("expected exactly one group")
	}
}

func TestConvertCommandFilterFile(t *testing.T) {
	dir := t.TempDir()
	filters := filepath.Join(dir, "filters.txt")
	content := "--include=entities IfcColumn\n\nexclude arg Name \"Column 2\"\n"
	if err := os.WriteFile(filters, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "columns.obj")
	_, err := run(t, "convert", writeSample(t), output,
		"--kernel", config.KernelPoly, "--filter-file", filters, "--naming", "name", "-q")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	data, _ := os.ReadFile(output)
	if !strings.Contains(string(data), "g Column_1\n") || strings.Contains(string(data), "Column_2") {
		t.Errorf("filter file not applied:\n%s", data)
	}
}

func TestConvertCommandErrors(t *testing.T) {
	input := writeSample(t)
	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"bad filter", []string{"--include", "colours red"}, errors.ErrInvalidFilter},
		{"conflicting filters", []string{"--include", "entities IfcWall", "--include", "layers A-*"}, errors.ErrInvalidFilter},
		{"center and offset", []string{"--center-model", "--model-offset", "1;2;3"}, errors.ErrInvalidConfig},
		{"bad offset", []string{"--model-offset", "1;2"}, errors.ErrInvalidConfig},
		{"unknown kernel", []string{"--kernel", "occt"}, errors.ErrInvalidConfig},
		{"element hierarchy", []string{"--use-element-hierarchy"}, errors.ErrInvalidConfig},
		{"bad naming", []string{"--naming", "label"}, errors.ErrInvalidConfig},
		{"nothing to convert", []string{"--include", "entities IfcBeam"}, errors.ErrNothingToConvert},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"convert", input, filepath.Join(dir, "out.obj"), "--kernel", config.KernelPoly, "-q"}, tt.args...)
			_, err := run(t, args...)
			if !errors.Is(err, tt.want) {
				t.Errorf("convert %v error = %v, want %v", tt.args, err, tt.want)
			}
		})
	}
}

func TestConvertCommandUnsupportedOutput(t *testing.T) {
	_, err := run(t, "convert", writeSample(t), filepath.Join(t.TempDir(), "model.glb"), "--kernel", config.KernelPoly, "-q")
	if !errors.Is(err, errors.ErrInvalidConfig) {
		t.Fatalf("error = %v, want ErrInvalidConfig", err)
	}
	if len(errors.GetAllHints(err)) == 0 {
		t.Error("expected a hint listing the supported formats")
	}
}

func TestConvertCommandConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "ifcgeom.toml")
	content := "[iterator]\nkernel = \"poly\"\n\n[serializer]\nnaming = \"name\"\n"
	if err := os.WriteFile(cfg, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "slab.obj")
	_, err := run(t, "convert", writeSample(t), output, "--config", cfg, "--include", "entities IfcSlab", "-q")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	data, _ := os.ReadFile(output)
	if !strings.Contains(string(data), "g Floor\n") {
		t.Errorf("config file naming not applied:\n%s", data)
	}
}

func TestConvertCommandArgs(t *testing.T) {
	if _, err := run(t, "convert", "only-input.ifc"); err == nil {
		t.Error("expected an error when the output is missing")
	}
}
