// Copyright 2025 Patrick J. Scruggs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package slogdiscord

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/compute/metadata"
)

// Platform names reported in RuntimeInfo.
const (
	PlatformLocal          = "local"
	PlatformCloudRun       = "cloud_run"
	PlatformCloudRunJob    = "cloud_run_job"
	PlatformCloudFunctions = "cloud_functions"
	PlatformAppEngine      = "app_engine"
	PlatformKubernetes     = "kubernetes"
	PlatformComputeEngine  = "compute_engine"
)

const metadataTimeout = time.Second

// RuntimeInfo describes where the process runs. It supplies the default
// sender name when none is configured and the project used for trace links.
type RuntimeInfo struct {
	Platform    string
	ServiceName string
	ProjectID   string
}

var (
	runtimeInfo     RuntimeInfo
	runtimeInfoOnce sync.Once

	// Seams for tests.
	metadataOnGCE        = metadata.OnGCE
	metadataInstanceName = metadata.InstanceNameWithContext
	metadataProjectID    = metadata.ProjectIDWithContext
	osHostname           = os.Hostname
	osExecutable         = os.Executable
)

// DetectRuntimeInfo inspects well-known environment variables and, on Google
// Cloud, the metadata server. The result is computed once per process.
func DetectRuntimeInfo() RuntimeInfo {
	runtimeInfoOnce.Do(func() {
		runtimeInfo = detectRuntimeInfo()
	})
	return runtimeInfo
}

// detectRuntimeInfo performs the uncached detection.
func detectRuntimeInfo() RuntimeInfo {
	info := RuntimeInfo{
		Platform: PlatformLocal,
		ProjectID: normalizeProjectID(firstNonEmpty(
			trimmedEnv("GOOGLE_CLOUD_PROJECT"),
			trimmedEnv("GCLOUD_PROJECT"),
			trimmedEnv("GCP_PROJECT"),
		)),
	}

	switch {
	case trimmedEnv("K_SERVICE") != "" && trimmedEnv("FUNCTION_TARGET") != "":
		info.Platform = PlatformCloudFunctions
		info.ServiceName = trimmedEnv("K_SERVICE")
	case trimmedEnv("K_SERVICE") != "" && trimmedEnv("K_REVISION") != "":
		info.Platform = PlatformCloudRun
		info.ServiceName = trimmedEnv("K_SERVICE")
	case trimmedEnv("CLOUD_RUN_JOB") != "":
		info.Platform = PlatformCloudRunJob
		info.ServiceName = trimmedEnv("CLOUD_RUN_JOB")
	case trimmedEnv("GAE_SERVICE") != "":
		info.Platform = PlatformAppEngine
		info.ServiceName = trimmedEnv("GAE_SERVICE")
		if info.ProjectID == "" {
			info.ProjectID = normalizeProjectID(trimmedEnv("GAE_APPLICATION"))
		}
	case trimmedEnv("KUBERNETES_SERVICE_HOST") != "":
		info.Platform = PlatformKubernetes
		info.ServiceName = firstNonEmpty(trimmedEnv("CONTAINER_NAME"), trimmedEnv("POD_NAME"))
	}

	if info.ServiceName != "" && info.ProjectID != "" {
		return info
	}
	if !metadataOnGCE() {
		return info
	}

	ctx, cancel := context.WithTimeout(context.Background(), metadataTimeout)
	defer cancel()
	if info.Platform == PlatformLocal {
		info.Platform = PlatformComputeEngine
	}
	if info.ServiceName == "" {
		if name, err := metadataInstanceName(ctx); err == nil {
			info.ServiceName = strings.TrimSpace(name)
		}
	}
	if info.ProjectID == "" {
		if pid, err := metadataProjectID(ctx); err == nil {
			info.ProjectID = normalizeProjectID(pid)
		}
	}
	return info
}

// defaultServiceName picks the sender name used when none is configured:
// the detected runtime service, then the host name, then the executable.
func defaultServiceName(info RuntimeInfo) string {
	if info.ServiceName != "" {
		return info.ServiceName
	}
	if host, err := osHostname(); err == nil && strings.TrimSpace(host) != "" {
		return strings.TrimSpace(host)
	}
	if exe, err := osExecutable(); err == nil && exe != "" {
		return filepath.Base(exe)
	}
	return "slogdiscord"
}

// trimmedEnv reads an environment variable and trims surrounding whitespace.
func trimmedEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// firstNonEmpty returns the first non-empty string after trimming whitespace.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
