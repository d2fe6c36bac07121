package schema

import "sort"

// ValidateGitHubActions validates a GitHub Actions workflow file:
// JSON-schema shape first, then the semantic checks a schema can't
// express.
func ValidateGitHubActions(content []byte) (Result, error) {
	result := Result{Valid: true}

	doc, err := decodeYAMLDocument(content)
	if err != nil {
		result.addError("%s", err.Error())
		return result, nil
	}

	compiled, err := getCompiledGitHubActionsSchema()
	if err != nil {
		return result, err
	}
	validateAgainstSchema(doc, compiled, &result)

	checkWorkflowTriggers(doc, &result)
	checkWorkflowJobs(doc, &result)

	return result, nil
}

func checkWorkflowTriggers(doc map[string]any, result *Result) {
	if _, ok := doc["on"]; !ok {
		result.addError("workflow is missing the 'on' trigger section")
	}

	triggers, _ := doc["on"].(map[string]any)
	for eventName, cfg := range triggers {
		cfgMap, ok := cfg.(map[string]any)
		if !ok {
			continue
		}
		_, hasBranches := cfgMap["branches"]
		_, hasIgnore := cfgMap["branches-ignore"]
		if hasBranches && hasIgnore {
			result.addWarning("trigger %q sets both 'branches' and 'branches-ignore'", eventName)
		}
	}
}

func checkWorkflowJobs(doc map[string]any, result *Result) {
	jobs, _ := doc["jobs"].(map[string]any)
	if jobs == nil {
		result.addError("workflow is missing the 'jobs' section")
		return
	}

	jobNames := make(map[string]bool, len(jobs))
	for name := range jobs {
		jobNames[name] = true
	}

	for _, name := range sortedJobNames(jobs) {
		job, _ := jobs[name].(map[string]any)
		if job == nil {
			continue
		}

		if _, ok := job["runs-on"]; !ok {
			result.addWarning("job %q is missing 'runs-on'", name)
		}
		steps, hasSteps := job["steps"].([]any)
		if !hasSteps || len(steps) == 0 {
			result.addWarning("job %q is missing 'steps'", name)
		}

		for _, need := range jobNeeds(job) {
			if !jobNames[need] {
				result.addWarning("job %q declares 'needs: %s', which is not a defined job", name, need)
			}
		}

		for i, raw := range steps {
			step, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			checkWorkflowStep(name, i, step, result)
		}
	}
}

func checkWorkflowStep(job string, index int, step map[string]any, result *Result) {
	uses, hasUses := step["uses"].(string)
	_, hasRun := step["run"]

	if !hasUses && !hasRun {
		result.addWarning("job %q step %d has neither 'uses' nor 'run'", job, index)
		return
	}

	if hasUses {
		if at := lastIndexByte(uses, '@'); at >= 0 {
			ref := uses[at+1:]
			if ref == "main" || ref == "master" {
				result.addWarning("job %q step %d pins action %q to a mutable branch ref", job, index, uses)
			}
		}
	}
}

func jobNeeds(job map[string]any) []string {
	switch v := job["needs"].(type) {
	case string:
		return []string{v}
	case []any:
		names := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				names = append(names, s)
			}
		}
		return names
	default:
		return nil
	}
}

func sortedJobNames(jobs map[string]any) []string {
	names := make([]string, 0, len(jobs))
	for name := range jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lastIndexByte(s string, b byte) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == b {
			return i
		}
	}
	return -1
}
