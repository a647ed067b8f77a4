package config

import "time"

const defaultPlantUMLServer = "http://www.plantuml.com/plantuml"

// GetPlantUMLServerURL returns the base URL of the PlantUML render server
func GetPlantUMLServerURL() string {
	return GetEnvOrDefault("PLANTUML_SERVER_URL", defaultPlantUMLServer)
}

// GetPlantUMLTimeout returns how long a single render request may take
func GetPlantUMLTimeout() time.Duration {
	return parseEnvDuration("PLANTUML_TIMEOUT", 5*time.Second)
}
