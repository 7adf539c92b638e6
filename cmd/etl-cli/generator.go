package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/aniketwaliyan/dwh-etl/internal/payable"
	"github.com/aniketwaliyan/dwh-etl/internal/purchasing"
	"github.com/aniketwaliyan/dwh-etl/internal/utils/config"
)

type Generator struct {
	Name string
	Kind string
	// Root is the project directory; pipelines are written under Root/pipelines.
	Root string
}

func NewGenerator(name, kind string) *Generator {
	return &Generator{Name: name, Kind: kind, Root: "."}
}

func (g *Generator) Generate() error {
	if g.Kind != config.KindPurchasing && g.Kind != config.KindPayable {
		return fmt.Errorf("unknown pipeline kind %q", g.Kind)
	}

	pipelineDir := filepath.Join(g.Root, "pipelines", g.Name)
	if err := os.MkdirAll(pipelineDir, 0755); err != nil {
		return fmt.Errorf("failed to create pipeline directory: %w", err)
	}

	files := map[string]string{
		"config.yaml": configTemplate,
		"README.md":   readmeTemplate,
	}

	for filename, tmpl := range files {
		if err := g.generateFile(pipelineDir, filename, tmpl); err != nil {
			return fmt.Errorf("failed to generate %s: %w", filename, err)
		}
	}

	if err := g.generateRootEnvTemplate(); err != nil {
		return fmt.Errorf("failed to generate root .env.template: %w", err)
	}

	return nil
}

func (g *Generator) generateRootEnvTemplate() error {
	if _, err := os.Stat(filepath.Join(g.Root, ".env.template")); os.IsNotExist(err) {
		return g.generateFile(g.Root, ".env.template", envTemplate)
	}
	return nil
}

func (g *Generator) generateFile(dir, filename, tmpl string) error {
	f, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return err
	}
	defer f.Close()

	data := struct {
		Name      string
		Kind      string
		Style     string
		ChunkSize int
	}{
		Name:      g.Name,
		Kind:      g.Kind,
		Style:     config.StyleUnion,
		ChunkSize: purchasing.ChunkSize,
	}
	if g.Kind == config.KindPayable {
		data.Style, data.ChunkSize = config.StyleValues, payable.ChunkSize
	}

	t := template.Must(template.New(filename).Parse(tmpl))
	return t.Execute(f, data)
}

func runGenerate(cmd *cobra.Command, args []string) {
	name, _ := cmd.Flags().GetString("name")
	kind, _ := cmd.Flags().GetString("kind")
	generator := NewGenerator(name, kind)
	if err := generator.Generate(); err != nil {
		fmt.Printf("Failed to generate pipeline: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully generated pipeline: %s\n", name)
}
