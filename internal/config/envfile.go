package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/agentteams/launcher/internal/domain"
)

var (
	ServerEnvFile = filepath.Join("server", ".env")
	ClientEnvFile = filepath.Join("client", ".env.local")
)

// SocketURL is the address the client uses to reach the server.
func SocketURL(serverPort int) string {
	return "http://localhost:" + strconv.Itoa(serverPort)
}

// WritePorts stores the server port in server/.env, keeping unrelated keys,
// and points the client at it through client/.env.local. It returns the
// files written.
func WritePorts(projectDir string, ports domain.Ports) ([]string, error) {
	serverPath := filepath.Join(projectDir, ServerEnvFile)
	serverEnv, err := readEnv(serverPath)
	if err != nil {
		return nil, err
	}
	port := strconv.Itoa(ports.Server)
	serverEnv["PORT"] = port
	serverEnv["SERVER_PORT"] = port
	if err := writeEnv(serverPath, serverEnv); err != nil {
		return nil, err
	}

	clientPath := filepath.Join(projectDir, ClientEnvFile)
	clientEnv := map[string]string{
		"NEXT_PUBLIC_DEMO_MODE":  "false",
		"NEXT_PUBLIC_SOCKET_URL": SocketURL(ports.Server),
	}
	if err := writeEnv(clientPath, clientEnv); err != nil {
		return nil, err
	}

	return []string{serverPath, clientPath}, nil
}

func readEnv(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return env, nil
}

func writeEnv(path string, env map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := godotenv.Write(env, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
