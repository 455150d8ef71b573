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
	"errors"
	"testing"
)

// clearRuntimeEnv blanks the environment hints read by detectRuntimeInfo.
func clearRuntimeEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GOOGLE_CLOUD_PROJECT", "GCLOUD_PROJECT", "GCP_PROJECT",
		"K_SERVICE", "K_REVISION", "FUNCTION_TARGET", "CLOUD_RUN_JOB",
		"GAE_SERVICE", "GAE_APPLICATION", "KUBERNETES_SERVICE_HOST",
		"CONTAINER_NAME", "POD_NAME",
	} {
		t.Setenv(key, "")
	}
}

// withMetadata installs metadata server stubs for the test scope.
func withMetadata(t *testing.T, onGCE bool, instance, project string) {
	t.Helper()
	origOnGCE, origInstance, origProject := metadataOnGCE, metadataInstanceName, metadataProjectID
	metadataOnGCE = func() bool { return onGCE }
	metadataInstanceName = func(context.Context) (string, error) {
		if instance == "" {
			return "", errors.New("metadata: not found")
		}
		return instance, nil
	}
	metadataProjectID = func(context.Context) (string, error) {
		if project == "" {
			return "", errors.New("metadata: not found")
		}
		return project, nil
	}
	t.Cleanup(func() {
		metadataOnGCE, metadataInstanceName, metadataProjectID = origOnGCE, origInstance, origProject
	})
}

func TestDetectRuntimeInfoPlatforms(t *testing.T) {
	tests := []struct {
		name         string
		env          map[string]string
		wantPlatform string
		wantService  string
		wantProject  string
	}{
		{
			name:         "cloud run service",
			env:          map[string]string{"K_SERVICE": "checkout", "K_REVISION": "checkout-00042", "GOOGLE_CLOUD_PROJECT": "acme-prod"},
			wantPlatform: PlatformCloudRun,
			wantService:  "checkout",
			wantProject:  "acme-prod",
		},
		{
			name:         "cloud functions",
			env:          map[string]string{"K_SERVICE": "resize", "FUNCTION_TARGET": "Resize", "GCP_PROJECT": "acme-fn"},
			wantPlatform: PlatformCloudFunctions,
			wantService:  "resize",
			wantProject:  "acme-fn",
		},
		{
			name:         "cloud run job",
			env:          map[string]string{"CLOUD_RUN_JOB": "nightly-export", "GOOGLE_CLOUD_PROJECT": "acme-prod"},
			wantPlatform: PlatformCloudRunJob,
			wantService:  "nightly-export",
			wantProject:  "acme-prod",
		},
		{
			name:         "app engine",
			env:          map[string]string{"GAE_SERVICE": "default", "GAE_APPLICATION": "s~acme-gae"},
			wantPlatform: PlatformAppEngine,
			wantService:  "default",
			wantProject:  "s~acme-gae",
		},
		{
			name:         "kubernetes",
			env:          map[string]string{"KUBERNETES_SERVICE_HOST": "10.0.0.1", "POD_NAME": "api-7d9c", "GOOGLE_CLOUD_PROJECT": "acme-gke"},
			wantPlatform: PlatformKubernetes,
			wantService:  "api-7d9c",
			wantProject:  "acme-gke",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearRuntimeEnv(t)
			withMetadata(t, false, "", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			info := detectRuntimeInfo()
			if info.Platform != tt.wantPlatform {
				t.Fatalf("Platform = %q, want %q", info.Platform, tt.wantPlatform)
			}
			if info.ServiceName != tt.wantService {
				t.Fatalf("ServiceName = %q, want %q", info.ServiceName, tt.wantService)
			}
			if info.ProjectID != tt.wantProject {
				t.Fatalf("ProjectID = %q, want %q", info.ProjectID, tt.wantProject)
			}
		})
	}
}

func TestDetectRuntimeInfoMetadataFallback(t *testing.T) {
	clearRuntimeEnv(t)
	withMetadata(t, true, "worker-vm-1", "projects/meta-project")

	info := detectRuntimeInfo()
	if info.Platform != PlatformComputeEngine {
		t.Fatalf("Platform = %q, want %q", info.Platform, PlatformComputeEngine)
	}
	if info.ServiceName != "worker-vm-1" {
		t.Fatalf("ServiceName = %q, want worker-vm-1", info.ServiceName)
	}
	if info.ProjectID != "meta-project" {
		t.Fatalf("ProjectID = %q, want meta-project", info.ProjectID)
	}
}

func TestDetectRuntimeInfoSkipsMetadataWhenResolved(t *testing.T) {
	clearRuntimeEnv(t)
	t.Setenv("K_SERVICE", "checkout")
	t.Setenv("K_REVISION", "checkout-1")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "acme-prod")

	probed := false
	origOnGCE := metadataOnGCE
	metadataOnGCE = func() bool { probed = true; return true }
	t.Cleanup(func() { metadataOnGCE = origOnGCE })

	_ = detectRuntimeInfo()
	if probed {
		t.Fatal("metadata server probed although env hints were complete")
	}
}

func TestDetectRuntimeInfoLocal(t *testing.T) {
	clearRuntimeEnv(t)
	withMetadata(t, false, "", "")

	info := detectRuntimeInfo()
	if info != (RuntimeInfo{Platform: PlatformLocal}) {
		t.Fatalf("detectRuntimeInfo() = %+v, want bare local info", info)
	}
}

func TestDefaultServiceName(t *testing.T) {
	origHostname, origExecutable := osHostname, osExecutable
	t.Cleanup(func() { osHostname, osExecutable = origHostname, origExecutable })

	if got := defaultServiceName(RuntimeInfo{ServiceName: "checkout"}); got != "checkout" {
		t.Fatalf("defaultServiceName(detected) = %q, want checkout", got)
	}

	osHostname = func() (string, error) { return " build-box ", nil }
	if got := defaultServiceName(RuntimeInfo{}); got != "build-box" {
		t.Fatalf("defaultServiceName(host) = %q, want build-box", got)
	}

	osHostname = func() (string, error) { return "", errors.New("no hostname") }
	osExecutable = func() (string, error) { return "/usr/local/bin/reporter", nil }
	if got := defaultServiceName(RuntimeInfo{}); got != "reporter" {
		t.Fatalf("defaultServiceName(executable) = %q, want reporter", got)
	}

	osExecutable = func() (string, error) { return "", errors.New("unsupported") }
	if got := defaultServiceName(RuntimeInfo{}); got != "slogdiscord" {
		t.Fatalf("defaultServiceName(nothing) = %q, want slogdiscord", got)
	}
}
