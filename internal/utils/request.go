package utils

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// maxBodyBytes borne la taille des corps JSON acceptés
const maxBodyBytes = 1 << 16

func DecodeJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

// QueryInt lit un paramètre entier optionnel, def s'il est absent ou invalide
func QueryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
