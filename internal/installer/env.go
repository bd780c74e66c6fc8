package installer

import "strings"

// NoDeprecationFlag is appended to NODE_OPTIONS for the install.
const NoDeprecationFlag = "--no-deprecation"

// BuildEnv returns base with telemetry, audit and funding noise disabled and
// deprecation warnings suppressed. base is not modified.
func BuildEnv(base []string) []string {
	env := make([]string, len(base))
	copy(env, base)

	env = setEnv(env, "npm_config_fund", "false")
	env = setEnv(env, "npm_config_audit", "false")
	env = setEnv(env, "npm_config_update_notifier", "false")
	env = setEnv(env, "ADBLOCK", "1")
	env = setEnv(env, "DISABLE_OPENCOLLECTIVE", "1")

	nodeOptions, _ := lookupEnv(env, "NODE_OPTIONS")
	if !containsField(nodeOptions, NoDeprecationFlag) {
		nodeOptions = strings.TrimSpace(nodeOptions + " " + NoDeprecationFlag)
	}
	env = setEnv(env, "NODE_OPTIONS", nodeOptions)

	return env
}

// setEnv sets or replaces an environment variable in the env slice.
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}

func lookupEnv(env []string, key string) (string, bool) {
	prefix := key + "="
	for _, e := range env {
		if strings.HasPrefix(e, prefix) {
			return strings.TrimPrefix(e, prefix), true
		}
	}
	return "", false
}

func containsField(s, field string) bool {
	for _, f := range strings.Fields(s) {
		if f == field {
			return true
		}
	}
	return false
}
