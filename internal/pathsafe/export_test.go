package pathsafe

// ValidateComponentFor exposes the goos-parameterized validation so tests can
// cover Windows behavior from any platform.
var ValidateComponentFor = validateComponent
