package httpx

import "net/http"

type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformMac     Platform = "mac"
	PlatformWindows Platform = "win"
	PlatformLinux   Platform = "linux"
	PlatformWeb     Platform = "web"
	PlatformCLI     Platform = "cli"
)

const (
	HeaderDeviceID   = "X-Device-Id"
	HeaderPlatform   = "X-Client-Platform"
	HeaderAppVersion = "X-App-Version"
)

// ClientMeta identifies the calling client to the API. Empty fields are not sent.
type ClientMeta struct {
	DeviceID   string
	Platform   Platform
	AppVersion string
}

func (m ClientMeta) Apply(h http.Header) {
	if m.DeviceID != "" {
		h.Set(HeaderDeviceID, m.DeviceID)
	}
	if m.Platform != "" {
		h.Set(HeaderPlatform, string(m.Platform))
	}
	if m.AppVersion != "" {
		h.Set(HeaderAppVersion, m.AppVersion)
	}
}

// ClientMetaFrom reads the identification headers of an incoming request.
func ClientMetaFrom(r *http.Request) ClientMeta {
	return ClientMeta{
		DeviceID:   r.Header.Get(HeaderDeviceID),
		Platform:   Platform(r.Header.Get(HeaderPlatform)),
		AppVersion: r.Header.Get(HeaderAppVersion),
	}
}
