package handler

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/dtroode/userkeeper-server/internal/apierrors"
	"github.com/dtroode/userkeeper-server/internal/model"
	"google.golang.org/protobuf/types/known/structpb"
)

func userToStruct(user model.User) (*structpb.Struct, error) {
	attributes := user.Attributes
	if attributes == nil {
		attributes = map[string]any{}
	}
	return structpb.NewStruct(map[string]any{
		"id":         user.ID,
		"email":      user.Email,
		"name":       user.Name,
		"attributes": attributes,
		"created_at": user.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at": user.UpdatedAt.UTC().Format(time.RFC3339Nano),
	})
}

func usersToList(users []model.User) (*structpb.ListValue, error) {
	list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(users))}
	for _, user := range users {
		s, err := userToStruct(user)
		if err != nil {
			return nil, err
		}
		list.Values = append(list.Values, structpb.NewStructValue(s))
	}
	return list, nil
}

func fieldsFromStruct(in *structpb.Struct) (model.UserFields, error) {
	var fields model.UserFields
	for key, value := range in.GetFields() {
		var err error
		switch key {
		case "email":
			fields.Email, err = stringField(key, value)
		case "name":
			fields.Name, err = stringField(key, value)
		case "attributes":
			fields.Attributes, err = structField(key, value)
		default:
			err = unknownField(key)
		}
		if err != nil {
			return model.UserFields{}, err
		}
	}
	return fields, nil
}

// patchFromStruct treats null values the same as absent keys.
func patchFromStruct(in *structpb.Struct) (model.UserPatch, error) {
	var patch model.UserPatch
	for key, value := range in.GetFields() {
		if isNull(value) {
			continue
		}
		switch key {
		case "email":
			email, err := stringField(key, value)
			if err != nil {
				return model.UserPatch{}, err
			}
			patch.Email = &email
		case "name":
			name, err := stringField(key, value)
			if err != nil {
				return model.UserPatch{}, err
			}
			patch.Name = &name
		case "attributes":
			attributes, err := structField(key, value)
			if err != nil {
				return model.UserPatch{}, err
			}
			patch.Attributes = attributes
		default:
			return model.UserPatch{}, unknownField(key)
		}
	}
	return patch, nil
}

// updateFromStruct splits an UpdateUser request into the target id and patch.
func updateFromStruct(in *structpb.Struct) (int64, model.UserPatch, error) {
	var (
		id      int64
		hasID   bool
		patch   model.UserPatch
		err     error
		request = in.GetFields()
	)
	for key, value := range request {
		switch key {
		case "id":
			id, err = idField(value)
			hasID = true
		case "patch":
			if isNull(value) {
				continue
			}
			s, ok := value.GetKind().(*structpb.Value_StructValue)
			if !ok {
				return 0, model.UserPatch{}, apierrors.NewErrInvalidPayload(`field "patch" must be an object`)
			}
			patch, err = patchFromStruct(s.StructValue)
		default:
			err = unknownField(key)
		}
		if err != nil {
			return 0, model.UserPatch{}, err
		}
	}
	if !hasID {
		return 0, model.UserPatch{}, apierrors.NewErrInvalidPayload(`field "id" is required`)
	}
	return id, patch, nil
}

func idField(value *structpb.Value) (int64, error) {
	switch kind := value.GetKind().(type) {
	case *structpb.Value_NumberValue:
		n := kind.NumberValue
		if n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
			return 0, apierrors.NewErrInvalidUserID(strconv.FormatFloat(n, 'g', -1, 64))
		}
		return int64(n), nil
	case *structpb.Value_StringValue:
		id, err := strconv.ParseInt(kind.StringValue, 10, 64)
		if err != nil {
			return 0, apierrors.NewErrInvalidUserID(kind.StringValue)
		}
		return id, nil
	default:
		return 0, apierrors.NewErrInvalidPayload(`field "id" must be a number`)
	}
}

func stringField(key string, value *structpb.Value) (string, error) {
	s, ok := value.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", apierrors.NewErrInvalidPayload(fmt.Sprintf("field %q must be a string", key))
	}
	return s.StringValue, nil
}

func structField(key string, value *structpb.Value) (map[string]any, error) {
	s, ok := value.GetKind().(*structpb.Value_StructValue)
	if !ok {
		return nil, apierrors.NewErrInvalidPayload(fmt.Sprintf("field %q must be an object", key))
	}
	return s.StructValue.AsMap(), nil
}

func isNull(value *structpb.Value) bool {
	_, ok := value.GetKind().(*structpb.Value_NullValue)
	return ok
}

func unknownField(key string) error {
	return apierrors.NewErrInvalidPayload(fmt.Sprintf("unknown field %q", key))
}
