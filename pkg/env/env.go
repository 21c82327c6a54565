package env

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/qiraa-project/qiraa/pkg/utils"
)

// Load loads environment variables from .env file
func Load() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found")
	}
}

// RequiredStringVariable returns the value of an environment variable or panics if not set
func RequiredStringVariable(name string) string {
	value := os.Getenv(name)
	if value == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", name))
	}
	return value
}

// RequiredIntVariable returns the value of an environment variable as int or panics if not set
func RequiredIntVariable(name string) int {
	value := RequiredStringVariable(name)
	intValue, err := strconv.Atoi(value)
	if err != nil {
		panic(fmt.Sprintf("environment variable %s must be an integer, got: %s", name, value))
	}
	return intValue
}

// StringVariable returns the value of an environment variable or a default value
func StringVariable(name, defaultValue string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return defaultValue
}

// IntVariable returns the value of an environment variable as int or a default value
func IntVariable(name string, defaultValue int) int {
	value := os.Getenv(name)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		panic(fmt.Sprintf("environment variable %s must be an integer, got: %s", name, value))
	}
	return intValue
}

// BoolVariable returns the value of an environment variable as bool or a default value
// E.g., "true", "1", "false", "0"
func BoolVariable(name string, defaultValue bool) bool {
	value := os.Getenv(name)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		panic(fmt.Sprintf("environment variable %s must be a boolean, got: %s", name, value))
	}
	return boolValue
}

// StringListVariable splits a comma separated environment variable, dropping empty entries
// E.g., "example.com, example.org" -> ["example.com", "example.org"]
func StringListVariable(name string, defaultValue []string) []string {
	value := os.Getenv(name)
	if value == "" {
		return defaultValue
	}
	items := utils.Map(strings.Split(value, ","), strings.TrimSpace)
	return utils.Filter(items, func(item string) bool { return item != "" })
}
