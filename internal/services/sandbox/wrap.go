package sandbox

import (
	"fmt"
	"strings"
)

// wrapArtifact embeds a generated scraper expression in a guard that catches
// any runtime failure and surfaces it through the result's "__error" entry,
// so a broken artifact produces a decodable result instead of an evaluate
// error. Artifacts are self-contained IIFEs that evaluate to a plain object.
func wrapArtifact(source string) string {
	return fmt.Sprintf(`(() => {
	try {
		const __result = (
%s
		);
		if (__result === null || typeof __result !== "object" || Array.isArray(__result)) {
			return {"__error": "scraper did not evaluate to an object, got " + (__result === null ? "null" : typeof __result)};
		}
		return __result;
	} catch (e) {
		return {"__error": (e && e.stack) ? String(e.stack) : String(e)};
	}
})()`, strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(source), ";")))
}
