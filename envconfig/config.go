// config.go - Haupt-Konfigurationsfunktionen fuer seqcache
//
// Dieses Modul enthaelt:
// - Host: Gibt Scheme und Host zurueck (SEQCACHE_HOST)
// - DBPath: Gibt den Pfad der Ergebnis-Datenbank zurueck (SEQCACHE_DB)
// - CacheCapacity: Gibt die Standard-Cache-Kapazitaet zurueck (SEQCACHE_CAPACITY)
// - SweepWorkers: Gibt die Parallelitaet der Grid-Suche zurueck (SEQCACHE_SWEEP_WORKERS)
// - LogLevel: Gibt Log-Level zurueck (SEQCACHE_DEBUG)
// - Var: Utility fuer Environment-Variablen
package envconfig

import (
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// Host gibt Scheme und Host zurueck
// Konfigurierbar via SEQCACHE_HOST
// Default: http://127.0.0.1:8023
func Host() *url.URL {
	defaultPort := "8023"

	s := strings.TrimSpace(Var("SEQCACHE_HOST"))
	scheme, hostport, ok := strings.Cut(s, "://")
	switch {
	case !ok:
		scheme, hostport = "http", s
	case scheme == "http":
		defaultPort = "80"
	case scheme == "https":
		defaultPort = "443"
	}

	hostport, path, _ := strings.Cut(hostport, "/")
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		host, port = "127.0.0.1", defaultPort
		if ip := net.ParseIP(strings.Trim(hostport, "[]")); ip != nil {
			host = ip.String()
		} else if hostport != "" {
			host = hostport
		}
	}

	if n, err := strconv.ParseInt(port, 10, 32); err != nil || n > 65535 || n < 0 {
		slog.Warn("invalid port, using default", "port", port, "default", defaultPort)
		port = defaultPort
	}

	return &url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(host, port),
		Path:   path,
	}
}

// DBPath gibt den Pfad der Ergebnis-Datenbank zurueck
// Konfigurierbar via SEQCACHE_DB
// Default: $HOME/.seqcache/runs.db
func DBPath() string {
	if s := Var("SEQCACHE_DB"); s != "" {
		return s
	}

	home, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}

	return filepath.Join(home, ".seqcache", "runs.db")
}

// CacheCapacity gibt die Standard-Kapazitaet des Ringpuffers zurueck
// Konfigurierbar via SEQCACHE_CAPACITY
// Default: 500 Eintraege pro Lane
func CacheCapacity() (capacity uint) {
	capacity = 500
	if s := Var("SEQCACHE_CAPACITY"); s != "" {
		if n, err := strconv.ParseUint(s, 10, 32); err == nil && n > 0 {
			capacity = uint(n)
		} else {
			slog.Warn("invalid cache capacity, using default", "SEQCACHE_CAPACITY", s, "default", capacity)
		}
	}

	return capacity
}

// SweepWorkers gibt die Anzahl paralleler Grid-Suche-Worker zurueck
// Konfigurierbar via SEQCACHE_SWEEP_WORKERS
// Default: Anzahl der CPUs
func SweepWorkers() int {
	workers := runtime.NumCPU()
	if s := Var("SEQCACHE_SWEEP_WORKERS"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			workers = n
		} else {
			slog.Warn("invalid sweep worker count, using default", "SEQCACHE_SWEEP_WORKERS", s, "default", workers)
		}
	}

	return workers
}

// LogLevel gibt das Log-Level zurueck
// Konfigurierbar via SEQCACHE_DEBUG
// Werte: 0/false = INFO (Default), 1/true = DEBUG, 2 = TRACE
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("SEQCACHE_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}

	return level
}

type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap gibt alle Konfigurationen als Map zurueck
// Enthaelt Namen, aktuelle Werte und Beschreibungen
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"SEQCACHE_DEBUG":         {"SEQCACHE_DEBUG", LogLevel(), "Show additional debug information (e.g. SEQCACHE_DEBUG=1)"},
		"SEQCACHE_HOST":          {"SEQCACHE_HOST", Host(), "IP Address for the seqcache server (default 127.0.0.1:8023)"},
		"SEQCACHE_DB":            {"SEQCACHE_DB", DBPath(), "Path to the run-results database (default ~/.seqcache/runs.db)"},
		"SEQCACHE_CAPACITY":      {"SEQCACHE_CAPACITY", CacheCapacity(), "Default cache capacity per lane (default 500)"},
		"SEQCACHE_SWEEP_WORKERS": {"SEQCACHE_SWEEP_WORKERS", SweepWorkers(), "Parallel workers for the grid sweep (default: number of CPUs)"},
	}
}

// Var gibt eine Environment-Variable zurueck
// Entfernt fuehrende/trailing Quotes und Leerzeichen
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}
