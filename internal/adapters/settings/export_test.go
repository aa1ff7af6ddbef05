package settings

// NewLoaderWithEnv creates a Loader reading environment variables from env.
func NewLoaderWithEnv(env map[string]string) *Loader {
	return &Loader{lookupEnv: func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}}
}
