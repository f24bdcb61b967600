package ocunit

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type eventKind int

const (
	eventOutput eventKind = iota
	eventPartition
	eventSuiteStarted
	eventSuiteFinished
	eventTestStarted
	eventTestPassed
	eventTestFailed
	eventError
	eventBuildFailed
	eventCrash
	eventNoise
)

func (k eventKind) String() string {
	switch k {
	case eventPartition:
		return "partition"
	case eventSuiteStarted:
		return "suite started"
	case eventSuiteFinished:
		return "suite finished"
	case eventTestStarted:
		return "test started"
	case eventTestPassed:
		return "test passed"
	case eventTestFailed:
		return "test failed"
	case eventError:
		return "error"
	case eventBuildFailed:
		return "build failed"
	case eventCrash:
		return "crash"
	case eventNoise:
		return "noise"
	default:
		return "output"
	}
}

// event is the classified form of a log line.
type event struct {
	kind eventKind
	line string

	name      string
	timestamp time.Time
	duration  time.Duration
	// aggregate is set for suite markers naming a bundle or a test run instead of a test class.
	aggregate bool

	architecture string
	mode         string

	location string
	class    string
	message  string
}

var (
	partitionPattern     = regexp.MustCompile(`Run unit tests for architecture '(.*?)' \(GC (.*?)\)`)
	suiteStartedPattern  = regexp.MustCompile(`Test Suite '([^']+)'.*started at\s+(.*)`)
	suiteFinishedPattern = regexp.MustCompile(`Test Suite '([^']+)'.*(?:finished|passed|failed) at\s+(.*)`)
	testStartedPattern   = regexp.MustCompile(`Test Case '-\[\S+\s+(\S+)\]' started\.`)
	testPassedPattern    = regexp.MustCompile(`Test Case '-\[\S+\s+(\S+)\]' passed \((\S+) seconds\)`)
	testFailedPattern    = regexp.MustCompile(`Test Case '-\[\S+\s+(\S+)\]' failed \((\S+) seconds\)`)
	errorPattern         = regexp.MustCompile(`^(.*): error: -\[(\S+) (\S+)\] : (.*)$`)
	buildFailedPattern   = regexp.MustCompile(`BUILD FAILED`)
	crashPattern         = regexp.MustCompile(`Segmentation fault`)

	noisePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\s*Run test case \S+`),
		regexp.MustCompile(`^\s*Run test suite \S+`),
		regexp.MustCompile(`^\s*Executed \d+ tests?, with \d+ failures? \(\d+ unexpected\) in \S+ \(\S+\) seconds`),
	}
)

var timestampLayouts = []string{
	"2006-01-02 15:04:05.000 -0700",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"15:04:05.000",
}

var aggregateSuiteNames = map[string]bool{
	"All tests":      true,
	"Selected tests": true,
}

// classify matches the line against the grammar, the first matching rule wins.
// Lines with a matching marker but an unparsable timestamp or duration are classified as output.
func classify(line string) event {
	if m := partitionPattern.FindStringSubmatch(line); m != nil {
		return event{kind: eventPartition, line: line, architecture: m[1], mode: m[2]}
	}

	if m := suiteStartedPattern.FindStringSubmatch(line); m != nil {
		ts, ok := parseTimestamp(m[2])
		if !ok {
			return outputEvent(line)
		}
		return event{kind: eventSuiteStarted, line: line, name: m[1], timestamp: ts, aggregate: isAggregateSuite(m[1])}
	}

	if m := suiteFinishedPattern.FindStringSubmatch(line); m != nil {
		ts, ok := parseTimestamp(m[2])
		if !ok {
			return outputEvent(line)
		}
		return event{kind: eventSuiteFinished, line: line, name: m[1], timestamp: ts, aggregate: isAggregateSuite(m[1])}
	}

	if m := testStartedPattern.FindStringSubmatch(line); m != nil {
		return event{kind: eventTestStarted, line: line, name: m[1]}
	}

	if m := testPassedPattern.FindStringSubmatch(line); m != nil {
		d, ok := parseDuration(m[2])
		if !ok {
			return outputEvent(line)
		}
		return event{kind: eventTestPassed, line: line, name: m[1], duration: d}
	}

	if m := errorPattern.FindStringSubmatch(line); m != nil {
		return event{kind: eventError, line: line, location: m[1], class: m[2], name: m[3], message: m[4]}
	}

	if m := testFailedPattern.FindStringSubmatch(line); m != nil {
		d, ok := parseDuration(m[2])
		if !ok {
			return outputEvent(line)
		}
		return event{kind: eventTestFailed, line: line, name: m[1], duration: d}
	}

	if buildFailedPattern.MatchString(line) {
		return event{kind: eventBuildFailed, line: line}
	}

	if crashPattern.MatchString(line) {
		return event{kind: eventCrash, line: line}
	}

	for _, pattern := range noisePatterns {
		if pattern.MatchString(line) {
			return event{kind: eventNoise, line: line}
		}
	}

	return outputEvent(line)
}

func outputEvent(line string) event {
	return event{kind: eventOutput, line: line}
}

// isAggregateSuite reports whether the suite marker names a test bundle or a whole run.
func isAggregateSuite(name string) bool {
	if aggregateSuiteNames[name] {
		return true
	}
	if strings.Contains(name, "/") {
		return true
	}
	return strings.HasSuffix(name, ".octest") || strings.HasSuffix(name, ".xctest")
}

func parseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	value = strings.TrimSuffix(value, ".")
	value = strings.TrimSpace(value)

	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

func parseDuration(value string) (time.Duration, bool) {
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil || seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, false
	}
	return time.Duration(math.Round(seconds * float64(time.Second))), true
}
