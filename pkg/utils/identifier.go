package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidIdentifier is returned when a station code or region name cannot be used as a table name
var ErrInvalidIdentifier = errors.New("invalid identifier")

const trainTablePrefix = "trains_"

var (
	stationCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{1,16}$`)
	tableNamePattern   = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)
)

// TrainTableName maps a station code to its train table, e.g. "MAO" -> "trains_mao"
func TrainTableName(stationCode string) (string, error) {
	code := strings.TrimSpace(stationCode)
	if !stationCodePattern.MatchString(code) {
		return "", fmt.Errorf("%w: station code %q", ErrInvalidIdentifier, stationCode)
	}
	return trainTablePrefix + strings.ToLower(code), nil
}

// RegionTableName maps a region or city name to its station table, e.g. "North Goa" -> "north_goa"
func RegionTableName(region string) (string, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(region)), " ", "_")
	if !tableNamePattern.MatchString(name) {
		return "", fmt.Errorf("%w: region %q", ErrInvalidIdentifier, region)
	}
	if strings.HasPrefix(name, trainTablePrefix) {
		return "", fmt.Errorf("%w: region %q collides with train tables", ErrInvalidIdentifier, region)
	}
	return name, nil
}

// IsTrainTable reports whether a table name belongs to a station's trains
func IsTrainTable(name string) bool {
	return strings.HasPrefix(name, trainTablePrefix)
}
