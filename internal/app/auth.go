package app

// ApiAccessKey is a data type for storing the API access key, used for DI.
type ApiAccessKey string

// JWTSecret is a data type for storing the HMAC secret of the API bearer tokens, used for DI.
type JWTSecret string
