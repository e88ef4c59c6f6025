package weather

// BuildRequestURL appends the key and location to baseURL, which must
// already end in a query-ready state ("?" or "&").
//
// The location is not URL-encoded; names containing spaces, '&' or '#'
// produce a malformed request.
func BuildRequestURL(baseURL, apiKey, location string) string {
	return baseURL + "appid=" + apiKey + "&q=" + location
}
