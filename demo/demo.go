// Package demo provides the sample portfolio shown when no profile is
// signed in.
package demo

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/robertmeta/techfolio/model"
	"gopkg.in/yaml.v3"
)

//go:embed demo.yaml
var raw []byte

// Dataset is a complete read-only portfolio snapshot.
type Dataset struct {
	Profile  model.Profile   `yaml:"profile"`
	Tags     []model.Tag     `yaml:"tags"`
	Roles    []string        `yaml:"roles"`
	Projects []model.Project `yaml:"projects"`
	Articles []model.Article `yaml:"articles"`
}

var (
	once    sync.Once
	dataset Dataset
	loadErr error
)

// Load returns the embedded dataset. Callers get fresh slices and may
// modify them.
func Load() (Dataset, error) {
	once.Do(func() {
		dataset, loadErr = Parse(raw)
	})
	if loadErr != nil {
		return Dataset{}, loadErr
	}
	return dataset.clone(), nil
}

// Parse decodes a dataset and fills tag colors on projects from the
// catalog.
func Parse(data []byte) (Dataset, error) {
	var d Dataset
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Dataset{}, fmt.Errorf("failed to parse demo dataset: %w", err)
	}

	colors := make(map[string]string, len(d.Tags))
	for _, t := range d.Tags {
		colors[t.Name] = t.Color
	}
	for i := range d.Projects {
		p := &d.Projects[i]
		if err := p.Validate(); err != nil {
			return Dataset{}, fmt.Errorf("demo project %s: %w", p.ID, err)
		}
		for j := range p.Tags {
			if p.Tags[j].Color == "" {
				p.Tags[j].Color = colors[p.Tags[j].Name]
			}
		}
	}
	return d, nil
}

func (d Dataset) clone() Dataset {
	c := d
	c.Tags = append([]model.Tag(nil), d.Tags...)
	c.Roles = append([]string(nil), d.Roles...)
	c.Projects = make([]model.Project, len(d.Projects))
	for i, p := range d.Projects {
		p.Tags = append([]model.Tag(nil), p.Tags...)
		p.RoleNames = append([]string(nil), p.RoleNames...)
		c.Projects[i] = p
	}
	c.Articles = make([]model.Article, len(d.Articles))
	for i, a := range d.Articles {
		a.Tags = append([]string(nil), a.Tags...)
		c.Articles[i] = a
	}
	return c
}
