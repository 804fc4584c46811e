package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/wildlife-park-etl/internal/domain"
	"gopkg.in/yaml.v3"
)

// VariantFile is the YAML form of a domain.Variant.
//
//	name: weather-only
//	clean:
//	  missing_token: na
//	  fields: [relativeHumidity, airTemperature, precipitation]
//	  optional_fields: [windSpeed]
//	views:
//	  - name: dailyAll
//	    aggregations:
//	      - {field: relativeHumidity, reduction: mean}
//	      - {field: airTemperature}        # configured air temperature policy
//	      - {field: precipitation, reduction: sum}
//	correlations:
//	  - view: dailyAll
//	    fields: [relativeHumidity, airTemperature, precipitation]
type VariantFile struct {
	Name         string            `yaml:"name"`
	Clean        CleanFile         `yaml:"clean"`
	Views        []ViewFile        `yaml:"views"`
	Correlations []CorrelationFile `yaml:"correlations"`
}

// CleanFile mirrors domain.CleanOptions.
type CleanFile struct {
	TimestampColumn    string   `yaml:"timestamp_column"`
	MissingToken       string   `yaml:"missing_token"`
	Fields             []string `yaml:"fields"`
	OptionalFields     []string `yaml:"optional_fields"`
	DeriveVisitorTotal bool     `yaml:"derive_visitor_total"`
}

// ViewFile mirrors domain.ViewSpec. Aggregations are a list to keep their order.
type ViewFile struct {
	Name         string            `yaml:"name"`
	Aggregations []AggregationFile `yaml:"aggregations"`
	Anchor       string            `yaml:"anchor"`
	Drop         string            `yaml:"drop"`
}

// AggregationFile is one field and its reduction. An empty reduction on
// airTemperature takes the configured policy.
type AggregationFile struct {
	Field     string `yaml:"field"`
	Reduction string `yaml:"reduction"`
}

// CorrelationFile mirrors domain.CorrelationSpec.
type CorrelationFile struct {
	View   string   `yaml:"view"`
	Fields []string `yaml:"fields"`
}

// LoadVariant reads a variant from a YAML file. airTemp fills in the
// reduction of air temperature aggregations that leave it blank.
func LoadVariant(path string, airTemp domain.Reduction) (domain.Variant, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Variant{}, fmt.Errorf("read variant: %w", err)
	}
	var vf VariantFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&vf); err != nil && !errors.Is(err, io.EOF) {
		return domain.Variant{}, &domain.ConfigError{Op: "variant " + path, Msg: err.Error()}
	}
	return vf.toDomain(airTemp)
}

func (vf VariantFile) toDomain(airTemp domain.Reduction) (domain.Variant, error) {
	op := "variant " + vf.Name
	if vf.Name == "" {
		return domain.Variant{}, &domain.ConfigError{Op: "variant", Msg: "name is required"}
	}

	v := domain.Variant{
		Name: vf.Name,
		Clean: domain.CleanOptions{
			TimestampColumn:    domain.Field(vf.Clean.TimestampColumn),
			MissingToken:       vf.Clean.MissingToken,
			Fields:             toFields(vf.Clean.Fields),
			OptionalFields:     toFields(vf.Clean.OptionalFields),
			DeriveVisitorTotal: vf.Clean.DeriveVisitorTotal,
		},
	}

	for _, view := range vf.Views {
		drop, err := domain.ParseDropPolicy(view.Drop)
		if err != nil {
			return domain.Variant{}, &domain.ConfigError{Op: op, Msg: fmt.Sprintf("view %s: %v", view.Name, err)}
		}
		spec := domain.ViewSpec{Name: view.Name, Anchor: domain.Field(view.Anchor), Drop: drop}
		for _, a := range view.Aggregations {
			field := domain.Field(a.Field)
			reduction := domain.Reduction(a.Reduction)
			if reduction == "" && field == domain.FieldAirTemperature {
				reduction = airTemp
			}
			if _, err := domain.ParseReduction(string(reduction)); err != nil {
				return domain.Variant{}, &domain.ConfigError{Op: op, Field: field, Msg: fmt.Sprintf("view %s: %v", view.Name, err)}
			}
			spec.Aggregations = append(spec.Aggregations, domain.FieldAggregation{Field: field, Reduction: reduction})
		}
		v.Views = append(v.Views, spec)
	}

	for _, c := range vf.Correlations {
		v.Correlations = append(v.Correlations, domain.CorrelationSpec{View: c.View, Fields: toFields(c.Fields)})
	}
	return v, nil
}

func toFields(names []string) []domain.Field {
	if len(names) == 0 {
		return nil
	}
	out := make([]domain.Field, len(names))
	for i, n := range names {
		out[i] = domain.Field(n)
	}
	return out
}
