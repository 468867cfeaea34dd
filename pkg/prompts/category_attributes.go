// Package prompts builds the completion prompts used for attribute
// generation.
package prompts

import (
	"fmt"
	"strings"

	"github.com/catalogmind/attribute-engine/pkg/models"
)

// CategoryPlaceholder is the template placeholder substituted with the
// sanitized subcategory name.
const CategoryPlaceholder = "{category}"

// BuildCategoryAttributesPrompt renders the user prompt for one subcategory.
// Every occurrence of CategoryPlaceholder in the template is replaced with
// the sanitized name. A template without the placeholder gets the category
// appended so the model always sees which subcategory to describe.
func BuildCategoryAttributesPrompt(template string, subcategoryName string) string {
	sanitized := models.SanitizeName(subcategoryName)

	if strings.Contains(template, CategoryPlaceholder) {
		return strings.ReplaceAll(template, CategoryPlaceholder, sanitized)
	}

	var prompt strings.Builder
	prompt.WriteString(template)
	if template != "" && !strings.HasSuffix(template, "\n") {
		prompt.WriteString("\n\n")
	}
	prompt.WriteString(fmt.Sprintf("Subcategory: %s", sanitized))
	return prompt.String()
}
