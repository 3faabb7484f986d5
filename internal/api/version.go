package api

// Version identifies the service build. Returned in the health payload and
// on every response as the X-Engine-Version header.
const Version = "1.0.0"
