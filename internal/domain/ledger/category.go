package ledger

import (
	"regexp"
	"strings"

	"github.com/ledgerbook/backend/internal/domain/shared"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// EntryType distinguishes money coming in from money going out
type EntryType string

const (
	EntryTypeIncome  EntryType = "income"
	EntryTypeExpense EntryType = "expense"
)

// IsValid reports whether t is income or expense
func (t EntryType) IsValid() bool {
	return t == EntryTypeIncome || t == EntryTypeExpense
}

var colorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// DefaultCategoryColor is assigned when no color is given
const DefaultCategoryColor = "#6B7280"

// Category classifies transactions and partner expenses
type Category struct {
	shared.BaseAggregateRoot
	Name        string
	Type        EntryType
	Color       string
	Description string
}

// NewCategory creates a category of the given type
func NewCategory(name string, entryType EntryType) (*Category, error) {
	name, err := normalizeCategoryName(name)
	if err != nil {
		return nil, err
	}
	if !entryType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Category type must be income or expense")
	}

	c := &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Type:              entryType,
		Color:             DefaultCategoryColor,
	}
	c.AddDomainEvent(NewCategoryEvent(EventTypeCategoryCreated, c))
	return c, nil
}

// Update changes the name, color and description. The type is fixed once created.
func (c *Category) Update(name, color, description string) error {
	name, err := normalizeCategoryName(name)
	if err != nil {
		return err
	}
	if err := c.SetColor(color); err != nil {
		return err
	}
	c.Name = name
	c.Description = strings.TrimSpace(description)
	c.Touch()
	c.AddDomainEvent(NewCategoryEvent(EventTypeCategoryUpdated, c))
	return nil
}

// SetColor sets the display color; empty resets to the default
func (c *Category) SetColor(color string) error {
	color = strings.TrimSpace(color)
	if color == "" {
		c.Color = DefaultCategoryColor
		return nil
	}
	if !colorRegex.MatchString(color) {
		return shared.NewDomainError("INVALID_COLOR", "Color must be in #RRGGBB format")
	}
	c.Color = strings.ToUpper(color)
	return nil
}

// NameKey returns the case-folded name used for uniqueness checks
func (c *Category) NameKey() string {
	return CategoryNameKey(c.Name)
}

// CategoryNameKey folds a category name for case-insensitive comparison
func CategoryNameKey(name string) string {
	// Casers keep state, so each call gets its own.
	return cases.Fold().String(strings.TrimSpace(name))
}

func normalizeCategoryName(name string) (string, error) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return "", shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 100 {
		return "", shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	return cases.Title(language.Und, cases.NoLower).String(name), nil
}
