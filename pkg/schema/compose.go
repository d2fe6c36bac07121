package schema

import (
	"sort"
	"strings"
)

// ValidateCompose validates a Docker Compose file: JSON-schema shape
// first, then the semantic checks a schema can't express.
func ValidateCompose(content []byte) (Result, error) {
	result := Result{Valid: true}

	doc, err := decodeYAMLDocument(content)
	if err != nil {
		result.addError("%s", err.Error())
		return result, nil
	}

	compiled, err := getCompiledComposeSchema()
	if err != nil {
		return result, err
	}
	validateAgainstSchema(doc, compiled, &result)

	checkComposeObsoleteVersion(doc, &result)
	checkComposeServices(doc, &result)

	return result, nil
}

func checkComposeObsoleteVersion(doc map[string]any, result *Result) {
	if _, ok := doc["version"]; ok {
		result.addWarning("top-level 'version' is obsolete in the Compose Specification and is ignored")
	}
}

func checkComposeServices(doc map[string]any, result *Result) {
	services, _ := doc["services"].(map[string]any)
	if services == nil {
		return
	}

	serviceNames := make(map[string]bool, len(services))
	for name := range services {
		serviceNames[name] = true
	}

	networks := topLevelNames(doc, "networks")
	volumes := topLevelNames(doc, "volumes")
	secrets := topLevelNames(doc, "secrets")
	configs := topLevelNames(doc, "configs")

	for _, name := range sortedKeys(services) {
		svc, _ := services[name].(map[string]any)
		if svc == nil {
			continue
		}

		if svc["image"] == nil && svc["build"] == nil {
			result.addWarning("service %q declares neither 'image' nor 'build'", name)
		}

		if privileged, ok := svc["privileged"].(bool); ok && privileged {
			result.addWarning("service %q runs with 'privileged: true'", name)
		}

		if image, ok := svc["image"].(string); ok {
			checkImageTag(name, image, result)
		}

		for _, dep := range composeDependsOn(svc) {
			if dep != "" && !serviceNames[dep] {
				result.addWarning("service %q depends on undefined service %q", name, dep)
			}
		}

		checkComposeReferences(name, svc, "networks", networks, result)
		checkComposeReferences(name, svc, "volumes", volumes, result)
		checkComposeReferences(name, svc, "secrets", secrets, result)
		checkComposeReferences(name, svc, "configs", configs, result)
	}
}

// composeDependsOn normalizes the two accepted depends_on shapes (a
// plain list of service names, or a map of service name to a
// {condition: ...} object) into a flat list of referenced names.
func composeDependsOn(svc map[string]any) []string {
	raw, ok := svc["depends_on"]
	if !ok {
		return nil
	}

	switch v := raw.(type) {
	case []any:
		names := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				names = append(names, s)
			}
		}
		return names
	case map[string]any:
		names := make([]string, 0, len(v))
		for name := range v {
			names = append(names, name)
		}
		return names
	default:
		return nil
	}
}

// checkImageTag warns on an image reference with no pinned tag (bare
// "redis") or an explicit ":latest", either of which defeats
// reproducible builds.
func checkImageTag(service, image string, result *Result) {
	if strings.Contains(image, "@sha256:") {
		return
	}
	ref := image
	if idx := strings.LastIndex(ref, "/"); idx >= 0 {
		ref = ref[idx+1:]
	}
	if !strings.Contains(ref, ":") {
		result.addWarning("service %q image %q has no pinned tag", service, image)
		return
	}
	tag := ref[strings.LastIndex(ref, ":")+1:]
	if tag == "latest" {
		result.addWarning("service %q image %q is pinned to ':latest'", service, image)
	}
}

// checkComposeReferences warns (for networks, "default" is implicit and
// always allowed) or errors (for volumes/secrets/configs, which have no
// implicit member) when a service references an undeclared top-level
// resource.
func checkComposeReferences(service string, svc map[string]any, field string, declared map[string]bool, result *Result) {
	refs := composeServiceReferenceNames(svc[field])
	for _, ref := range refs {
		if declared[ref] {
			continue
		}
		if field == "networks" && ref == "default" {
			continue
		}
		if field == "networks" {
			result.addWarning("service %q references undefined network %q", service, ref)
			continue
		}
		result.addError("service %q references undefined %s %q", service, strings.TrimSuffix(field, "s"), ref)
	}
}

// composeServiceReferenceNames normalizes a service-level field that may
// be a list of names, a list of {source: ...} objects, or a map keyed by
// name, into a flat list of referenced top-level names.
func composeServiceReferenceNames(raw any) []string {
	switch v := raw.(type) {
	case []any:
		names := make([]string, 0, len(v))
		for _, item := range v {
			switch entry := item.(type) {
			case string:
				names = append(names, entry)
			case map[string]any:
				if src, ok := entry["source"].(string); ok {
					names = append(names, src)
				}
			}
		}
		return names
	case map[string]any:
		names := make([]string, 0, len(v))
		for name := range v {
			names = append(names, name)
		}
		return names
	default:
		return nil
	}
}

func topLevelNames(doc map[string]any, field string) map[string]bool {
	names := map[string]bool{}
	section, _ := doc[field].(map[string]any)
	for name := range section {
		names[name] = true
	}
	return names
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
