package env

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Get devuelve el valor de la env var o el default si está vacía.
func Get(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

// GetInt parsea la env var como int; si falta o no parsea, devuelve el default.
func GetInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// Must corta el proceso si la env var no está definida.
// Solo para wiring en main; nunca usar en handlers.
func Must(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("missing required env %s", key)
	}
	return v
}
