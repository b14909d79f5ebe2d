package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/video-stream/subreflow/internal/db"
)

// settingsKeys defines which keys are allowed and their display metadata
var settingsKeys = []SettingDef{
	{Key: "youdao_app_key", Label: "Youdao App Key", Group: "youdao", Placeholder: "0123456789abcdef", Secret: true},
	{Key: "youdao_app_secret", Label: "Youdao App Secret", Group: "youdao", Placeholder: "", Secret: true},
	{Key: "deepl_api_key", Label: "DeepL API Key", Group: "deepl", Placeholder: "xxxxxxxx-xxxx-...", Secret: true},
	{Key: "openai_api_key", Label: "OpenAI API Key", Group: "openai", Placeholder: "sk-...", Secret: true},
	{Key: "openai_model", Label: "OpenAI Model", Group: "openai", Placeholder: "gpt-4o-mini", Secret: false},
	{Key: "gemini_api_key", Label: "Gemini API Key", Group: "gemini", Placeholder: "AIza...", Secret: true},
	{Key: "gemini_model", Label: "Gemini Model", Group: "gemini", Placeholder: "gemini-2.0-flash", Secret: false},
}

const maskPrefix = "••••••••"

type SettingDef struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Group       string `json:"group"`
	Placeholder string `json:"placeholder"`
	Secret      bool   `json:"secret"`
}

type SettingResponse struct {
	SettingDef
	Value    string `json:"value"`
	HasValue bool   `json:"has_value"`
}

type SettingsHandler struct {
	database *db.Database
}

func NewSettingsHandler(database *db.Database) *SettingsHandler {
	return &SettingsHandler{database: database}
}

// maskSecret shows only the last 4 characters.
func maskSecret(val string) string {
	if r := []rune(val); len(r) > 4 {
		return maskPrefix + string(r[len(r)-4:])
	}
	return maskPrefix
}

// GetSettings returns all settings (secrets are masked)
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	all, err := h.database.GetAllSettings()
	if err != nil {
		jsonError(w, "failed to load settings", http.StatusInternalServerError)
		return
	}

	result := make([]SettingResponse, 0, len(settingsKeys))
	for _, def := range settingsKeys {
		val := all[def.Key]
		hasValue := val != ""
		if def.Secret && hasValue {
			val = maskSecret(val)
		}
		result = append(result, SettingResponse{
			SettingDef: def,
			Value:      val,
			HasValue:   hasValue,
		})
	}

	jsonResponse(w, result, http.StatusOK)
}

// UpdateSettings saves settings from the request body. Unknown keys and
// masked values echoed back by the UI are ignored; an empty string clears
// the setting.
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var updates map[string]string
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	allowed := make(map[string]bool)
	for _, def := range settingsKeys {
		allowed[def.Key] = true
	}

	for key, value := range updates {
		if !allowed[key] || strings.HasPrefix(value, maskPrefix) {
			continue
		}
		if err := h.database.SetSetting(key, strings.TrimSpace(value)); err != nil {
			jsonError(w, "failed to save setting: "+key, http.StatusInternalServerError)
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}
