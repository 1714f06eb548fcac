package devenv

// LiveSiteConfig points the opt-in live tests at a real inmate search site.
// It lives in dev/.state/live_site.json5.
type LiveSiteConfig struct {
	BaseUrl string `json:"base_url"`
	Name    string `json:"name"`
	Mode    string `json:"mode"`
}
