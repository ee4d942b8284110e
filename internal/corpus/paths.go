package corpus

import "fmt"

// DefaultDocPaths returns the documentation pages indexed for the given
// Laravel version. The list mirrors the sidebar of laravel.com/docs.
func DefaultDocPaths(version string) []string {
	if version == "" {
		version = "12.x"
	}

	pages := []string{
		"releases",
		"upgrade",
		"contributions",
		"installation",
		"configuration",
		"structure",
		"frontend",
		"starter-kits",
		"deployment",
		"lifecycle",
		"container",
		"providers",
		"facades",
		"routing",
		"middleware",
		"csrf",
		"controllers",
		"requests",
		"responses",
		"views",
		"blade",
		"vite",
		"urls",
		"session",
		"validation",
		"errors",
		"logging",
		"artisan",
		"broadcasting",
		"cache",
		"collections",
		"concurrency",
		"context",
		"contracts",
		"events",
		"filesystem",
		"helpers",
		"http-client",
		"localization",
		"mail",
		"notifications",
		"packages",
		"processes",
		"queues",
		"rate-limiting",
		"strings",
		"scheduling",
		"authentication",
		"authorization",
		"verification",
		"encryption",
		"hashing",
		"passwords",
		"database",
		"queries",
		"pagination",
		"migrations",
		"seeding",
		"redis",
		"mongodb",
		"eloquent",
		"eloquent-relationships",
		"eloquent-collections",
		"eloquent-mutators",
		"eloquent-resources",
		"eloquent-serialization",
		"eloquent-factories",
		"testing",
		"http-tests",
		"console-tests",
		"dusk",
		"database-testing",
		"mocking",
		"billing",
		"cashier-paddle",
		"envoy",
		"fortify",
		"folio",
		"homestead",
		"horizon",
		"mix",
		"octane",
		"passport",
		"pennant",
		"pint",
		"precognition",
		"prompts",
		"pulse",
		"reverb",
		"sail",
		"sanctum",
		"scout",
		"socialite",
		"telescope",
		"valet",
	}

	paths := make([]string, len(pages))
	for i, page := range pages {
		paths[i] = fmt.Sprintf("/docs/%s/%s", version, page)
	}
	return paths
}
