package tui

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Skin is a color palette loadable from a yaml file in the config dir.
type Skin struct {
	Title    string `yaml:"title"`
	Accent   string `yaml:"accent"`
	Dim      string `yaml:"dim"`
	Positive string `yaml:"positive"`
	Negative string `yaml:"negative"`
	NewPage  string `yaml:"new-page"`
	Risky    string `yaml:"risky"`
	Status   string `yaml:"status"`
}

func defaultSkin() Skin {
	return Skin{
		Title:    "15",
		Accent:   "39",
		Dim:      "244",
		Positive: "40",
		Negative: "196",
		NewPage:  "214",
		Risky:    "201",
		Status:   "17",
	}
}

var (
	titleStyle    lipgloss.Style
	accentStyle   lipgloss.Style
	dimStyle      lipgloss.Style
	positiveStyle lipgloss.Style
	negativeStyle lipgloss.Style
	newPageStyle  lipgloss.Style
	riskyStyle    lipgloss.Style
	statusStyle   lipgloss.Style
	selectedStyle lipgloss.Style
	chartBarStyle lipgloss.Style
)

func init() {
	applySkin(defaultSkin())
}

// InitializeSkin loads the named skin from configDir/skins/<name>.yml and
// applies it. The default skin never touches the filesystem. Missing or
// malformed skin files leave the default applied and return the error so
// the caller can warn.
func InitializeSkin(name, configDir string) error {
	if name == "" || name == "default" {
		return nil
	}

	raw, err := os.ReadFile(filepath.Join(configDir, "skins", name+".yml"))
	if err != nil {
		return err
	}

	skin := defaultSkin()
	if err := yaml.Unmarshal(raw, &skin); err != nil {
		return err
	}
	applySkin(skin)
	return nil
}

func applySkin(s Skin) {
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(s.Title)).Bold(true)
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(s.Accent))
	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(s.Dim))
	positiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(s.Positive))
	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(s.Negative))
	newPageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(s.NewPage)).Bold(true)
	riskyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(s.Risky)).Bold(true)
	statusStyle = lipgloss.NewStyle().Background(lipgloss.Color(s.Status)).Foreground(lipgloss.Color(s.Title))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	chartBarStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.Accent)).
		Background(lipgloss.Color(s.Accent))
}
