package media

import (
	"os"
	"strconv"
)

// Config configures the S3-compatible bucket (AWS S3 or MinIO).
type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	PathStyle bool
	// PublicURL is the origin clients fetch objects from; defaults to Endpoint.
	PublicURL string
}

// ConfigFromEnv reads S3_ENDPOINT, S3_REGION, S3_BUCKET, S3_ACCESS_KEY,
// S3_SECRET_KEY, S3_PATH_STYLE and S3_PUBLIC_URL.
func ConfigFromEnv() Config {
	c := Config{
		Endpoint:  os.Getenv("S3_ENDPOINT"),
		Region:    os.Getenv("S3_REGION"),
		Bucket:    os.Getenv("S3_BUCKET"),
		AccessKey: os.Getenv("S3_ACCESS_KEY"),
		SecretKey: os.Getenv("S3_SECRET_KEY"),
		PublicURL: os.Getenv("S3_PUBLIC_URL"),
		PathStyle: true,
	}
	if c.Region == "" {
		c.Region = "us-east-1"
	}
	if v, err := strconv.ParseBool(os.Getenv("S3_PATH_STYLE")); err == nil {
		c.PathStyle = v
	}
	return c
}

func (c Config) publicBaseURL() string {
	if c.PublicURL != "" {
		return c.PublicURL
	}
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return "https://s3." + c.Region + ".amazonaws.com"
}
