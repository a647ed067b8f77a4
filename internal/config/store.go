package config

// GetDiagramDBPath returns the SQLite file used when Redis is unavailable.
// Empty keeps diagrams in memory.
func GetDiagramDBPath() string {
	return GetEnvOrDefault("DIAGRAM_DB_PATH", "")
}
