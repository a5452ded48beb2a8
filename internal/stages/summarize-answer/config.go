// internal/stages/summarize-answer/config.go
package summarizeanswer

type Config struct {
	MaxContextBytes int
}

func LoadConfig() *Config {
	return &Config{
		MaxContextBytes: 60000,
	}
}
