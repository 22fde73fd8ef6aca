package cmd

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/promptlab/aoai/internal/azureai"
	"github.com/promptlab/aoai/internal/output"
)

var configForce bool

// envFileFunc returns the .env file path, replaceable in tests.
var envFileFunc = defaultEnvFile

func defaultEnvFile() string {
	return ".env"
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or manage configuration",
	Long: `Show or manage aoai configuration.

Running bare 'aoai config' is the same as 'aoai config show'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .env template with commented defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitRun()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration with sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite existing .env file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

// envTemplate is the template for generating a commented .env file.
const envTemplate = `# aoai configuration
# Loaded into the process environment at startup if this file exists.
# See: aoai config show (for effective values and sources)

# Secret key for the Azure OpenAI resource (required)
{{ .KeyVar }}=

# Resource endpoint, e.g. https://my-resource.openai.azure.com (required)
{{ .EndpointVar }}=

# Deployment name on the resource (required)
# {{ .DeploymentAltVar }} is honored as a fallback if this is unset.
{{ .DeploymentVar }}=

# API version (default: {{ .APIVersion }})
# {{ .VersionVar }}={{ .APIVersion }}
`

type envTemplateData struct {
	KeyVar           string
	EndpointVar      string
	DeploymentVar    string
	DeploymentAltVar string
	VersionVar       string
	APIVersion       string
}

func configInitRun() error {
	envPath := envFileFunc()

	// Check if file already exists
	if _, err := os.Stat(envPath); err == nil {
		if !configForce {
			return fmt.Errorf("env file already exists: %s (use --force to overwrite)", envPath)
		}
		ui.Warning("Overwriting existing env file")
	}

	data := envTemplateData{
		KeyVar:           azureai.EnvAPIKey,
		EndpointVar:      azureai.EnvEndpoint,
		DeploymentVar:    azureai.EnvDeployment,
		DeploymentAltVar: azureai.EnvDeploymentAlt,
		VersionVar:       azureai.EnvAPIVersion,
		APIVersion:       azureai.DefaultAPIVersion,
	}

	tmpl, err := template.New("env").Parse(envTemplate)
	if err != nil {
		return fmt.Errorf("template parse error: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("template execute error: %w", err)
	}

	if dryRun {
		ui.DryRunMsg("Would create env file: %s", envPath)
		fmt.Fprintln(ui.Out)
		fmt.Fprint(ui.Out, buf.String())
		return nil
	}

	if err := os.WriteFile(envPath, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write env file: %w", err)
	}

	ui.Success("Env file created: %s", envPath)
	fmt.Fprintln(ui.Out)
	fmt.Fprint(ui.Out, buf.String())
	return nil
}

// configVarInfo describes one consulted environment variable for display.
type configVarInfo struct {
	EnvVar   string
	Key      string
	Fallback string
	Secret   bool
	Required bool
}

var configVars = []configVarInfo{
	{EnvVar: azureai.EnvAPIKey, Key: "api_key", Secret: true, Required: true},
	{EnvVar: azureai.EnvEndpoint, Key: "endpoint", Required: true},
	{EnvVar: azureai.EnvDeployment, Key: "deployment", Fallback: azureai.EnvDeploymentAlt, Required: true},
	{EnvVar: azureai.EnvAPIVersion, Key: "api_version"},
}

func configShowRun() error {
	envPath := envFileFunc()
	if _, err := os.Stat(envPath); err == nil {
		ui.Info("Env file: %s", envPath)
	} else {
		ui.Info("Env file: (none)")
	}
	fmt.Fprintln(ui.Out)

	table := ui.Table([]string{"Variable", "Value", "Source"})
	for _, v := range configVars {
		val := viper.GetString(v.Key)
		if v.Secret {
			val = output.Redact(val)
		}
		table.Append([]string{v.EnvVar, val, detectSource(v)})
	}
	if err := table.Render(); err != nil {
		return err
	}

	return nil
}

// detectSource determines where a variable's effective value comes from.
// Set-but-empty variables count as unset, matching resolution.
func detectSource(v configVarInfo) string {
	if os.Getenv(v.EnvVar) != "" {
		return "(env)"
	}
	if v.Fallback != "" && os.Getenv(v.Fallback) != "" {
		return fmt.Sprintf("(env: %s)", v.Fallback)
	}
	if !v.Required {
		return "(default)"
	}
	return output.Red("(missing)")
}
