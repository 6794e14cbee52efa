package vocabulary

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Fallback is the catch-all entry present in both default lists
const Fallback = "Other"

var defaultCuisines = []string{
	"African", "American", "Asian", "British", "Caribbean", "Chinese",
	"Eastern European", "French", "German", "Greek", "Indian",
	"Italian", "Japanese", "Korean", "Latin American", "Mediterranean",
	"Mexican", "Middle Eastern", "Nordic", "Polish", "Portuguese",
	"Russian", "Spanish", "Thai", "Vietnamese", "Other",
}

var defaultCategories = []string{
	"Appetizer", "Main Course", "Dessert", "Soup", "Salad",
	"Side Dish", "Snack", "Beverage", "Breakfast", "Brunch", "Lunch",
	"Dinner", "Vegetarian", "Vegan", "Gluten Free", "Dairy Free",
	"Holiday", "Christmas", "Easter", "Halloween", "Valentine's Day",
	"Summer", "Winter", "Spring", "Autumn", "Seafood", "Meat",
	"Poultry", "Pasta", "Rice", "Stew", "Bake", "Other",
}

// Registry holds the closed sets of cuisines and categories the model is
// asked to choose from. It is immutable once constructed.
type Registry struct {
	cuisines    []string
	categories  []string
	cuisineSet  map[string]struct{}
	categorySet map[string]struct{}
}

// File is the on-disk YAML layout accepted by Load
type File struct {
	Cuisines   []string `yaml:"cuisines"`
	Categories []string `yaml:"categories"`
}

// Default returns the built-in registry
func Default() *Registry {
	reg, err := New(defaultCuisines, defaultCategories)
	if err != nil {
		panic(fmt.Sprintf("vocabulary: invalid default lists: %v", err))
	}
	return reg
}

// New creates a registry from the given ordered lists. The lists are copied.
func New(cuisines, categories []string) (*Registry, error) {
	cuisineSet, err := buildSet("cuisines", cuisines)
	if err != nil {
		return nil, err
	}
	categorySet, err := buildSet("categories", categories)
	if err != nil {
		return nil, err
	}

	return &Registry{
		cuisines:    append([]string(nil), cuisines...),
		categories:  append([]string(nil), categories...),
		cuisineSet:  cuisineSet,
		categorySet: categorySet,
	}, nil
}

// Load reads a registry from a YAML file. A list missing from the file falls
// back to the default one.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary file: %w", err)
	}

	if len(f.Cuisines) == 0 {
		f.Cuisines = defaultCuisines
	}
	if len(f.Categories) == 0 {
		f.Categories = defaultCategories
	}

	return New(f.Cuisines, f.Categories)
}

// Cuisines returns a copy of the cuisine list in registry order
func (r *Registry) Cuisines() []string {
	return append([]string(nil), r.cuisines...)
}

// Categories returns a copy of the category list in registry order
func (r *Registry) Categories() []string {
	return append([]string(nil), r.categories...)
}

// HasCuisine reports whether s is an exact member of the cuisine list
func (r *Registry) HasCuisine(s string) bool {
	_, ok := r.cuisineSet[s]
	return ok
}

// HasCategory reports whether s is an exact member of the category list
func (r *Registry) HasCategory(s string) bool {
	_, ok := r.categorySet[s]
	return ok
}

func buildSet(name string, values []string) (map[string]struct{}, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%s list must not be empty", name)
	}
	set := make(map[string]struct{}, len(values))
	for i, v := range values {
		if strings.TrimSpace(v) == "" {
			return nil, fmt.Errorf("%s[%d] is blank", name, i)
		}
		if _, dup := set[v]; dup {
			return nil, fmt.Errorf("%s contains duplicate entry %q", name, v)
		}
		set[v] = struct{}{}
	}
	return set, nil
}
