// Package identity derives the stable id an agent reports to the controller.
package identity

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/host"
	"go.uber.org/zap"
)

// Fingerprint hashes the kernel release and hostname into a hex id
func Fingerprint(release, hostname string) string {
	sum := md5.Sum([]byte(release + "-" + hostname))
	return hex.EncodeToString(sum[:])
}

// ClientID computes this host's fingerprint
func ClientID() (string, error) {
	info, err := host.Info()
	if err != nil {
		return "", fmt.Errorf("failed to read host info: %w", err)
	}
	return Fingerprint(info.KernelVersion, info.Hostname), nil
}

// Platform describes the host OS, e.g. "linux ubuntu 22.04"
func Platform() string {
	info, err := host.Info()
	if err != nil {
		return "unknown"
	}
	return fmt.Sprintf("%s %s %s", info.OS, info.Platform, info.PlatformVersion)
}

// Resolve returns override when set, otherwise the host fingerprint.
// If the host cannot be fingerprinted a random id is used for this run.
func Resolve(override string, logger *zap.Logger) string {
	if override != "" {
		return override
	}

	id, err := ClientID()
	if err != nil {
		id = uuid.New().String()
		logger.Warn("Falling back to random agent id", zap.Error(err), zap.String("agent_id", id))
	}
	return id
}
