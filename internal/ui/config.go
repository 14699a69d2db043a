package ui

// Config contains window and pacing settings.
type Config struct {
	Title    string // window title
	Scale    int    // integer upscaling factor
	LimitFPS bool   // pace Update to the LCD refresh rate
	// ScreenshotDir receives F12 screenshots.
	ScreenshotDir string
}

// Defaults fills missing fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.Title == "" {
		c.Title = "gbemu"
	}
	if c.Scale <= 0 {
		c.Scale = 3
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = "."
	}
}
