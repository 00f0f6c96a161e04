package handlers

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"placegallery/backend/models"
)

func validLength(value, field string, min, max int) models.ValidationResult {
	n := utf8.RuneCountInString(value)
	if n == 0 {
		return models.ValidationResult{IsValid: false, Message: field + " is required"}
	}
	if n < min {
		return models.ValidationResult{IsValid: false, Message: field + " is too short"}
	}
	if n > max {
		return models.ValidationResult{IsValid: false, Message: field + " is too long"}
	}
	return models.ValidationResult{IsValid: true}
}

func ValidateName(name string) models.ValidationResult {
	return validLength(name, "Name", 2, 40)
}

func ValidateAbout(about string) models.ValidationResult {
	return validLength(about, "About", 2, 200)
}

func ValidateCardName(name string) models.ValidationResult {
	return validLength(name, "Place name", 2, 30)
}

func ValidateLink(link string) models.ValidationResult {
	if link == "" {
		return models.ValidationResult{IsValid: false, Message: "Link is required"}
	}
	u, err := url.ParseRequestURI(link)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return models.ValidationResult{IsValid: false, Message: "Link must be an http(s) URL"}
	}
	return models.ValidationResult{IsValid: true}
}

func firstInvalid(results ...models.ValidationResult) models.ValidationResult {
	for _, r := range results {
		if !r.IsValid {
			return r
		}
	}
	return models.ValidationResult{IsValid: true}
}

func normalizeProfile(p models.ProfileUpdate) models.ProfileUpdate {
	return models.ProfileUpdate{Name: strings.TrimSpace(p.Name), About: strings.TrimSpace(p.About)}
}

func normalizeCard(c models.NewCard) models.NewCard {
	return models.NewCard{Name: strings.TrimSpace(c.Name), Link: strings.TrimSpace(c.Link)}
}
