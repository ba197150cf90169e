package main

import "strconv"

// scenarioFlag accepts any value the way C's atoi does: leading digits are
// used, anything else reads as 0 and runs every scenario.
type scenarioFlag int

func (s *scenarioFlag) String() string {
	return strconv.Itoa(int(*s))
}

func (s *scenarioFlag) Set(v string) error {
	*s = scenarioFlag(atoi(v))
	return nil
}

func (s *scenarioFlag) Type() string {
	return "int"
}

func atoi(s string) int {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n') {
		i++
	}
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	n := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		if n > 1<<20 {
			break
		}
		n = n*10 + int(s[i]-'0')
	}
	if neg {
		return -n
	}
	return n
}

// trimDanglingScenario drops a trailing --scenario/-s that has no value so
// it is ignored instead of failing flag parsing.
func trimDanglingScenario(args []string) []string {
	if n := len(args); n > 0 && (args[n-1] == "--scenario" || args[n-1] == "-s") {
		return args[:n-1]
	}
	return args
}
