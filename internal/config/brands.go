package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	apierrors "brandsales/internal/errors"
	"brandsales/pkg/contracts/domain"
)

// brandRulesFile is the layout of a standalone brand rules file:
//
//	brands:
//	  - pattern: "^TH_"
//	    label: "Theonia EU"
type brandRulesFile struct {
	Brands []domain.BrandRule `yaml:"brands" validate:"required,min=1,dive"`
}

// LoadBrandRules reads an ordered list of brand rules from a YAML file
func LoadBrandRules(path string) ([]domain.BrandRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read brand rules: %w", err)
	}
	return ParseBrandRules(data)
}

// ParseBrandRules decodes and validates brand rules in the rules file layout
func ParseBrandRules(data []byte) ([]domain.BrandRule, error) {
	var file brandRulesFile
	if err := yaml.UnmarshalStrict(data, &file); err != nil {
		return nil, apierrors.NewParsingError("parse brand rules", err)
	}
	if len(file.Brands) == 0 {
		return nil, errors.New("brand rules file defines no brands")
	}
	if err := configValidator.Struct(&file); err != nil {
		return nil, fmt.Errorf("invalid brand rules: %w", err)
	}
	return file.Brands, nil
}
