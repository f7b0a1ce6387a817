package discord

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// parseDiscordTag parses a struct tag value
// (e.g. "optional,description:Search by name,autocomplete,default:foo")
// into a map of keys and values.
func parseDiscordTag(tag string) map[string]string {
	parts := strings.Split(tag, ",")
	result := make(map[string]string)
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, ":", 2)
		if len(kv) == 2 {
			result[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		} else {
			result[part] = "true"
		}
	}
	return result
}

// parseChoices parses a choices string (e.g. "val1|Label1;val2|Label2")
// into command option choices.
func parseChoices(s string) []*discordgo.ApplicationCommandOptionChoice {
	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "|", 2)
		name := parts[0]
		if len(parts) == 2 {
			name = parts[1]
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  name,
			Value: parts[0],
		})
	}
	return choices
}

// setDefaults fills zero-valued fields of the struct pointed to by req with
// the "default" value from their "discord" tag.
func setDefaults(req interface{}) error {
	v := reflect.ValueOf(req)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("setDefaults: req is not a pointer to struct")
	}
	v = v.Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)
		if !fieldVal.CanSet() || !fieldVal.IsZero() {
			continue
		}
		tag := field.Tag.Get("discord")
		if tag == "" {
			continue
		}
		if def, ok := parseDiscordTag(tag)["default"]; ok && def != "" {
			converted, err := convertType(def, field.Type)
			if err != nil {
				return err
			}
			fieldVal.Set(converted)
		}
	}
	return nil
}

// convertType converts a string value to a reflect.Value of type t for basic types.
func convertType(val string, t reflect.Type) (reflect.Value, error) {
	switch t.Kind() {
	case reflect.String:
		return reflect.ValueOf(val), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(i).Convert(t), nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(f).Convert(t), nil
	case reflect.Bool:
		b, err := strconv.ParseBool(val)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(b), nil
	default:
		return reflect.Value{}, fmt.Errorf("unsupported type for default conversion: %s", t.Kind())
	}
}

// structToCommandOptions uses reflection to generate Discord command options
// from a request struct. The "discord" tag supports optional, description,
// choices, autocomplete, and default keys. Options are required unless tagged
// optional.
func structToCommandOptions(req Request) ([]*discordgo.ApplicationCommandOption, error) {
	if req == nil {
		return nil, nil
	}
	t := reflect.TypeOf(req)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("request is not a struct")
	}

	var options []*discordgo.ApplicationCommandOption
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		optionName := strings.ToLower(field.Name)

		var optionType discordgo.ApplicationCommandOptionType
		switch field.Type.Kind() {
		case reflect.String:
			optionType = discordgo.ApplicationCommandOptionString
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			optionType = discordgo.ApplicationCommandOptionInteger
		case reflect.Float32, reflect.Float64:
			optionType = discordgo.ApplicationCommandOptionNumber
		case reflect.Bool:
			optionType = discordgo.ApplicationCommandOptionBoolean
		default:
			optionType = discordgo.ApplicationCommandOptionString
		}

		required := true
		autocomplete := false
		description := "Option " + optionName
		var choices []*discordgo.ApplicationCommandOptionChoice

		if tagValue := field.Tag.Get("discord"); tagValue != "" {
			tags := parseDiscordTag(tagValue)
			if _, ok := tags["optional"]; ok {
				required = false
			}
			if _, ok := tags["autocomplete"]; ok {
				autocomplete = true
			}
			if desc, ok := tags["description"]; ok && desc != "" {
				description = desc
			}
			if choicesStr, ok := tags["choices"]; ok && choicesStr != "" {
				choices = parseChoices(choicesStr)
			}
		}

		options = append(options, &discordgo.ApplicationCommandOption{
			Type:         optionType,
			Name:         optionName,
			Description:  description,
			Required:     required,
			Choices:      choices,
			Autocomplete: autocomplete,
		})
	}

	return options, nil
}
