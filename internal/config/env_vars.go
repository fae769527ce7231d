package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	portEnvVar      = "PORT"
	appNameVar      = "APP_NAME"
	folderEnvVar    = "FOLDER"
	baseURLVar      = "BASE_URL"
	jwtSecretVar    = "JWT_SECRET"
	keyFileVar      = "JWT_KEY_FILE"
	redisAddrVar    = "REDIS_ADDR"
	adminLoginIDVar = "ADMIN_LOGIN_ID"
	adminPassVar    = "ADMIN_PASSWORD"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Asset Console")
}

func (EnvVars) GetDataFolder() string {
	return GetEnv(folderEnvVar, "./data")
}

// GetBaseURL is the externally visible server URL, used as the token issuer.
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:8080")
}

// GetJWTSecret switches token signing to HS256 when set.
func (EnvVars) GetJWTSecret() string {
	return GetEnv(jwtSecretVar, "")
}

// GetKeyFile is where the RSA signing key is kept between restarts.
func (e EnvVars) GetKeyFile() string {
	return GetEnv(keyFileVar, filepath.Join(e.GetDataFolder(), "signing-key.pem"))
}

// GetRedisAddr selects the Redis refresh token store. Empty keeps tokens in
// memory.
func (EnvVars) GetRedisAddr() string {
	return GetEnv(redisAddrVar, "")
}

func (EnvVars) GetAdminLoginID() string {
	return GetEnv(adminLoginIDVar, "admin")
}

// GetAdminPassword is empty unless set, in which case a password is generated
// at bootstrap.
func (EnvVars) GetAdminPassword() string {
	return GetEnv(adminPassVar, "")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
