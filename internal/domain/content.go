package domain

import "time"

// ThemeID addresses the singleton theme document
const ThemeID = "theme_settings"

type ThemeSettings struct {
	ID             string    `json:"id" bson:"id"`
	PrimaryColor   string    `json:"primary_color" bson:"primary_color"`
	SecondaryColor string    `json:"secondary_color" bson:"secondary_color"`
	AccentColor    string    `json:"accent_color" bson:"accent_color"`
	HeroImages     []string  `json:"hero_images" bson:"hero_images"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

// DefaultTheme is served until an admin saves a theme
func DefaultTheme() *ThemeSettings {
	return &ThemeSettings{
		ID:             ThemeID,
		PrimaryColor:   "#2C3639",
		SecondaryColor: "#DCD7C9",
		AccentColor:    "#A27B5C",
		HeroImages:     []string{},
		UpdatedAt:      time.Now().UTC(),
	}
}

type FAQItem struct {
	ID        string    `json:"id" bson:"id"`
	Question  string    `json:"question" bson:"question"`
	Answer    string    `json:"answer" bson:"answer"`
	Order     int       `json:"order" bson:"order"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// ThemePatch carries a partial theme update; nil fields are left unchanged
type ThemePatch struct {
	PrimaryColor   *string
	SecondaryColor *string
	AccentColor    *string
	HeroImages     []string
}

type FAQPatch struct {
	Question *string
	Answer   *string
	Order    *int
}
