package source

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/teemow/calimport/internal/calendar"
)

// yamlTime accepts either a bare timestamp or a {date_time, time_zone} map.
type yamlTime calendar.TimeSpec

func (t *yamlTime) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		t.DateTime = node.Value
		return nil
	}
	var spec calendar.TimeSpec
	if err := node.Decode(&spec); err != nil {
		return err
	}
	*t = yamlTime(spec)
	return nil
}

type yamlEvent struct {
	Summary     string   `yaml:"summary"`
	Description string   `yaml:"description"`
	Location    string   `yaml:"location"`
	Start       yamlTime `yaml:"start"`
	End         yamlTime `yaml:"end"`
	TimeZone    string   `yaml:"time_zone"`
}

type yamlDocument struct {
	TimeZone string      `yaml:"time_zone"`
	Events   []yaml.Node `yaml:"events"`
}

// ReadYAML reads candidates from a YAML list, or from the events key of a
// mapping. A top-level or per-event time_zone applies to bounds that name
// none.
func ReadYAML(r io.Reader, opts Options) (*Batch, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return &Batch{}, nil
		}
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	doc := &root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}

	var items []*yaml.Node
	switch doc.Kind {
	case yaml.SequenceNode:
		items = doc.Content
	case yaml.MappingNode:
		var wrapped yamlDocument
		if err := doc.Decode(&wrapped); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		if wrapped.TimeZone != "" {
			opts.DefaultTimeZone = wrapped.TimeZone
		}
		for i := range wrapped.Events {
			items = append(items, &wrapped.Events[i])
		}
	default:
		return nil, errors.New("YAML must be a list of events or a mapping with an events key")
	}

	batch := &Batch{}
	for _, item := range items {
		var rec yamlEvent
		if err := item.Decode(&rec); err != nil {
			batch.reject("line", item.Line, "", err.Error())
			continue
		}

		recOpts := opts
		if rec.TimeZone != "" {
			recOpts.DefaultTimeZone = rec.TimeZone
		}
		event, reason := normalize(calendar.Event{
			Summary:     rec.Summary,
			Description: rec.Description,
			Location:    rec.Location,
			Start:       calendar.TimeSpec(rec.Start),
			End:         calendar.TimeSpec(rec.End),
		}, recOpts)
		if reason != "" {
			batch.reject("line", item.Line, event.Summary, reason)
			continue
		}
		batch.accept(event)
	}
	return batch, nil
}
