package db

import "testing"

func TestIndexDefinitionValidate(t *testing.T) {
	valid := IndexDefinition{
		Name:     "lexrag:articles:idx",
		Prefixes: []string{"lexrag:articles:"},
		Fields: []IndexField{
			{Name: "__content", Type: IndexFieldText},
			{Name: "__vector", Type: IndexFieldVector, VectorDim: 1536},
		},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid definition rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*IndexDefinition)
	}{
		{"empty name", func(d *IndexDefinition) { d.Name = "" }},
		{"invalid name", func(d *IndexDefinition) { d.Name = "idx with spaces" }},
		{"no fields", func(d *IndexDefinition) { d.Fields = nil }},
		{"empty field name", func(d *IndexDefinition) { d.Fields[0].Name = "" }},
		{"duplicate field", func(d *IndexDefinition) { d.Fields[1].Name = "__content"; d.Fields[1].Type = IndexFieldText }},
		{"vector without dim", func(d *IndexDefinition) { d.Fields[1].VectorDim = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := valid
			def.Fields = append([]IndexField(nil), valid.Fields...)
			tt.mutate(&def)
			if err := def.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestIndexDefinitionValidate_AliasCollision(t *testing.T) {
	def := IndexDefinition{
		Name: "idx",
		Fields: []IndexField{
			{Name: "vector", Type: IndexFieldText},
			{Name: "__vector", Alias: "vector", Type: IndexFieldVector, VectorDim: 4},
		},
	}
	if err := def.Validate(); err == nil {
		t.Error("alias colliding with a field name must be rejected")
	}
}

func TestIsValidIdentifier(t *testing.T) {
	tests := []struct {
		s    string
		want bool
	}{
		{"lexrag:articles:idx", true},
		{"with-dash_and_underscore", true},
		{"Alpha123", true},
		{"", false},
		{"has space", false},
		{"has/slash", false},
		{"émoji", false},
	}
	for _, tt := range tests {
		if got := IsValidIdentifier(tt.s); got != tt.want {
			t.Errorf("IsValidIdentifier(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
}
