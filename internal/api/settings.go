package api

import (
	"encoding/json"
	"net/http"

	"trade_journal/internal/auth"
)

type SettingsResponse struct {
	DataSourceMode  string `json:"data_source_mode"`
	UseRealDataOnly bool   `json:"use_real_data_only"`
}

type DataSourceRequest struct {
	Mode            string `json:"data_source_mode,omitempty"`
	UseRealDataOnly *bool  `json:"use_real_data_only,omitempty"`
}

// HandleGetSettings возвращает клиентские флаги
func (h *Handler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	mode, err := h.storage.GetSetting(auth.SettingDataSourceMode)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to read settings")
		return
	}

	if mode == "" {
		mode = string(auth.ModeAPI)
	}

	realOnly, _ := h.storage.GetSetting(auth.SettingRealDataOnly)

	h.respondSuccess(w, "", SettingsResponse{
		DataSourceMode:  mode,
		UseRealDataOnly: realOnly == "true",
	})
}

// HandleSetDataSource обновляет флаги источника данных
func (h *Handler) HandleSetDataSource(w http.ResponseWriter, r *http.Request) {
	var req DataSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Mode != "" {
		// Смена источника данных переключает и auth режим
		if err := h.bridge.ToggleMode(auth.Mode(req.Mode)); err != nil {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	if req.UseRealDataOnly != nil {
		value := "false"
		if *req.UseRealDataOnly {
			value = "true"
		}

		if err := h.storage.SetSetting(auth.SettingRealDataOnly, value); err != nil {
			h.respondError(w, http.StatusInternalServerError, "Failed to save settings")
			return
		}
	}

	h.respondSuccess(w, "Settings updated", nil)
}
