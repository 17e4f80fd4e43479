package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Names are the four fields rewritten for every generated experiment.
type Names struct {
	Experiment string
	Workload   string
	Container  string
	Image      string
}

// NamesFor returns the names for sequence index i of worker workerID. Worker
// ids and indices never repeat across a run, so neither do the names.
func NamesFor(workerID, i int) Names {
	return Names{
		Experiment: fmt.Sprintf("thread_%d_exp_%d", workerID, i),
		Workload:   fmt.Sprintf("thread_%d_deployment_%d", workerID, i),
		Container:  fmt.Sprintf("thread_%d_container_%d", workerID, i),
		Image:      fmt.Sprintf("docker.io/thread_%d_image_%d", workerID, i),
	}
}

// Template is the first entry of the create_exp.json array.
type Template struct {
	raw json.RawMessage
}

// Experiment is one generated instance of a Template.
type Experiment struct {
	Names
	Body map[string]interface{}
}

// LoadTemplate reads an experiment template document from path.
func LoadTemplate(path string) (*Template, error) {
	data, err := LoadDocument(path)
	if err != nil {
		return nil, err
	}

	tmpl, err := ParseTemplate(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return tmpl, nil
}

// ParseTemplate extracts and validates the first element of a JSON array.
func ParseTemplate(data []byte) (*Template, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("experiment template must be a JSON array: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("experiment template array is empty")
	}

	if err := validateTemplateEntry(entries[0]); err != nil {
		return nil, err
	}

	return &Template{raw: entries[0]}, nil
}

// Instance returns a deep copy of the template with the names of
// (workerID, i) applied. No two instances share any nested value.
func (t *Template) Instance(workerID, i int) (*Experiment, error) {
	dec := json.NewDecoder(bytes.NewReader(t.raw))
	dec.UseNumber()

	var body map[string]interface{}
	if err := dec.Decode(&body); err != nil {
		return nil, err
	}

	names := NamesFor(workerID, i)

	objects, ok := body["kubernetes_objects"].([]interface{})
	if !ok || len(objects) == 0 {
		return nil, fmt.Errorf("kubernetes_objects is missing")
	}
	object, ok := objects[0].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("kubernetes_objects[0] is not an object")
	}
	containers, ok := object["containers"].([]interface{})
	if !ok || len(containers) == 0 {
		return nil, fmt.Errorf("kubernetes_objects[0].containers is missing")
	}
	container, ok := containers[0].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("kubernetes_objects[0].containers[0] is not an object")
	}

	body["experiment_name"] = names.Experiment
	object["name"] = names.Workload
	container["container_name"] = names.Container
	container["container_image_name"] = names.Image

	return &Experiment{Names: names, Body: body}, nil
}
