package entity

// TokenSource tells the credential resolver where the Cloudability token comes
// from. The first non-empty field wins: Token, then EnvVar, then Command.
type TokenSource struct {
	Token   string
	EnvVar  string
	Command string
}

// UploadSpec describes where a produced file is pushed to.
type UploadSpec struct {
	Bucket          string `json:"bucket_name" validate:"required"`
	Key             string `json:"key"`
	AccessKeyID     string `json:"aws_access_key_id" validate:"required"`
	SecretAccessKey string `json:"aws_secret_access_key" validate:"required"`
	Region          string `json:"region_name" validate:"required"`
	// Endpoint points the client at an S3 compatible store instead of AWS.
	Endpoint string `json:"s3_endpoint" validate:"omitempty,url"`
}
