package domain

import "time"

// ReaderPreferencesVersion is bumped whenever a field is added to ReaderPreferences.
const ReaderPreferencesVersion = 2

// ReaderPreferences holds per-client Qur'an reader display settings.
type ReaderPreferences struct {
	Version             int       `json:"version"`
	ArabicFont          string    `json:"arabicFont" validate:"required,max=64"`
	ArabicFontSize      int       `json:"arabicFontSize" validate:"min=12,max=72"`
	TranslationFontSize int       `json:"translationFontSize" validate:"min=10,max=48"`
	Zoom                float64   `json:"zoom" validate:"gte=0.5,lte=3"`
	Reciter             string    `json:"reciter" validate:"required,max=64"`
	Editions            []string  `json:"editions" validate:"min=1,max=5,dive,required,max=64"`
	ShowTranslation     bool      `json:"showTranslation"`
	AutoPlayNext        bool      `json:"autoPlayNext"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// DefaultReaderPreferences returns the defaults for the current version.
func DefaultReaderPreferences() ReaderPreferences {
	return ReaderPreferences{
		Version:             ReaderPreferencesVersion,
		ArabicFont:          "Amiri",
		ArabicFontSize:      28,
		TranslationFontSize: 16,
		Zoom:                1,
		Reciter:             "ar.alafasy",
		Editions:            []string{"quran-uthmani", "en.sahih"},
		ShowTranslation:     true,
		AutoPlayNext:        false,
	}
}
