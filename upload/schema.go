package upload

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// PublishEventsProcedure is the RPC path of EventsService.PublishEvents.
const PublishEventsProcedure = "/confidence.events.v1.EventsService/PublishEvents"

// Descriptors for confidence/events/v1/api.proto, resolved once at init.
var (
	publishMethod protoreflect.MethodDescriptor

	requestDesc  protoreflect.MessageDescriptor
	eventDesc    protoreflect.MessageDescriptor
	responseDesc protoreflect.MessageDescriptor
	errorDesc    protoreflect.MessageDescriptor

	fieldClientSecret    protoreflect.FieldDescriptor
	fieldEvents          protoreflect.FieldDescriptor
	fieldSendTime        protoreflect.FieldDescriptor
	fieldEventDefinition protoreflect.FieldDescriptor
	fieldEventTime       protoreflect.FieldDescriptor
	fieldPayload         protoreflect.FieldDescriptor
	fieldErrors          protoreflect.FieldDescriptor
	fieldErrorIndex      protoreflect.FieldDescriptor
	fieldErrorReason     protoreflect.FieldDescriptor
	fieldErrorMessage    protoreflect.FieldDescriptor
)

func init() {
	// Register the well-known types the schema imports.
	_ = structpb.File_google_protobuf_struct_proto
	_ = timestamppb.File_google_protobuf_timestamp_proto

	file, err := protodesc.NewFile(schemaFile(), protoregistry.GlobalFiles)
	if err != nil {
		panic(fmt.Sprintf("upload: building events schema: %v", err))
	}

	messages := file.Messages()
	requestDesc = messages.ByName("PublishEventsRequest")
	eventDesc = messages.ByName("Event")
	responseDesc = messages.ByName("PublishEventsResponse")
	errorDesc = messages.ByName("EventError")
	publishMethod = file.Services().ByName("EventsService").Methods().ByName("PublishEvents")

	fieldClientSecret = requestDesc.Fields().ByName("client_secret")
	fieldEvents = requestDesc.Fields().ByName("events")
	fieldSendTime = requestDesc.Fields().ByName("send_time")
	fieldEventDefinition = eventDesc.Fields().ByName("event_definition")
	fieldEventTime = eventDesc.Fields().ByName("event_time")
	fieldPayload = eventDesc.Fields().ByName("payload")
	fieldErrors = responseDesc.Fields().ByName("errors")
	fieldErrorIndex = errorDesc.Fields().ByName("index")
	fieldErrorReason = errorDesc.Fields().ByName("reason")
	fieldErrorMessage = errorDesc.Fields().ByName("message")
}

func schemaFile() *descriptorpb.FileDescriptorProto {
	return &descriptorpb.FileDescriptorProto{
		Name:       proto.String("confidence/events/v1/api.proto"),
		Package:    proto.String("confidence.events.v1"),
		Syntax:     proto.String("proto3"),
		Dependency: []string{"google/protobuf/struct.proto", "google/protobuf/timestamp.proto"},
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("PublishEventsRequest"),
				Field: []*descriptorpb.FieldDescriptorProto{
					scalarField("client_secret", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
					repeatedField("events", 2, ".confidence.events.v1.Event"),
					messageField("send_time", 3, ".google.protobuf.Timestamp"),
				},
			},
			{
				Name: proto.String("Event"),
				Field: []*descriptorpb.FieldDescriptorProto{
					scalarField("event_definition", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
					messageField("event_time", 2, ".google.protobuf.Timestamp"),
					messageField("payload", 3, ".google.protobuf.Struct"),
				},
			},
			{
				Name: proto.String("PublishEventsResponse"),
				Field: []*descriptorpb.FieldDescriptorProto{
					repeatedField("errors", 1, ".confidence.events.v1.EventError"),
				},
			},
			{
				Name: proto.String("EventError"),
				Field: []*descriptorpb.FieldDescriptorProto{
					scalarField("index", 1, descriptorpb.FieldDescriptorProto_TYPE_INT32),
					{
						Name:     proto.String("reason"),
						JsonName: proto.String("reason"),
						Number:   proto.Int32(2),
						Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
						Type:     descriptorpb.FieldDescriptorProto_TYPE_ENUM.Enum(),
						TypeName: proto.String(".confidence.events.v1.EventError.Reason"),
					},
					scalarField("message", 3, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				},
				EnumType: []*descriptorpb.EnumDescriptorProto{
					{
						Name: proto.String("Reason"),
						Value: []*descriptorpb.EnumValueDescriptorProto{
							{Name: proto.String("REASON_UNSPECIFIED"), Number: proto.Int32(int32(ReasonUnspecified))},
							{Name: proto.String("EVENT_DEFINITION_NOT_FOUND"), Number: proto.Int32(int32(ReasonEventDefinitionNotFound))},
							{Name: proto.String("EVENT_SCHEMA_VALIDATION_FAILED"), Number: proto.Int32(int32(ReasonEventSchemaValidationFailed))},
						},
					},
				},
			},
		},
		Service: []*descriptorpb.ServiceDescriptorProto{
			{
				Name: proto.String("EventsService"),
				Method: []*descriptorpb.MethodDescriptorProto{
					{
						Name:       proto.String("PublishEvents"),
						InputType:  proto.String(".confidence.events.v1.PublishEventsRequest"),
						OutputType: proto.String(".confidence.events.v1.PublishEventsResponse"),
					},
				},
			},
		},
	}
}

func scalarField(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:     proto.String(name),
		JsonName: proto.String(jsonName(name)),
		Number:   proto.Int32(number),
		Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:     typ.Enum(),
	}
}

func messageField(name string, number int32, typeName string) *descriptorpb.FieldDescriptorProto {
	f := scalarField(name, number, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE)
	f.TypeName = proto.String(typeName)
	return f
}

func repeatedField(name string, number int32, typeName string) *descriptorpb.FieldDescriptorProto {
	f := messageField(name, number, typeName)
	f.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
	return f
}

// jsonName is protoc's lowerCamelCase mapping of a snake_case field name.
func jsonName(name string) string {
	out := make([]byte, 0, len(name))
	upper := false
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '_' {
			upper = true
			continue
		}
		if upper && 'a' <= c && c <= 'z' {
			c -= 'a' - 'A'
		}
		upper = false
		out = append(out, c)
	}
	return string(out)
}

// encodeRequest converts req into a dynamic PublishEventsRequest.
func encodeRequest(req *PublishRequest) (*dynamicpb.Message, error) {
	msg := dynamicpb.NewMessage(requestDesc)
	msg.Set(fieldClientSecret, protoreflect.ValueOfString(req.ClientSecret))
	if err := setMessage(msg, fieldSendTime, timestamppb.New(req.SendTime)); err != nil {
		return nil, fmt.Errorf("encoding send_time: %w", err)
	}

	events := msg.Mutable(fieldEvents).List()
	for i, ev := range req.Events {
		elem := events.NewElement()
		em := elem.Message()
		em.Set(fieldEventDefinition, protoreflect.ValueOfString(ev.Definition))
		if err := setMessage(em, fieldEventTime, timestamppb.New(ev.EventTime)); err != nil {
			return nil, fmt.Errorf("encoding event %d time: %w", i, err)
		}
		payload := ev.Payload
		if payload == nil {
			payload = &structpb.Struct{}
		}
		if err := setMessage(em, fieldPayload, payload); err != nil {
			return nil, fmt.Errorf("encoding event %d payload: %w", i, err)
		}
		events.Append(elem)
	}
	return msg, nil
}

// decodeResponse reads the sparse error list out of a dynamic
// PublishEventsResponse.
func decodeResponse(msg protoreflect.Message) *PublishResponse {
	list := msg.Get(fieldErrors).List()
	resp := &PublishResponse{Errors: make([]EventError, 0, list.Len())}
	for i := range list.Len() {
		em := list.Get(i).Message()
		resp.Errors = append(resp.Errors, EventError{
			Index:   int(em.Get(fieldErrorIndex).Int()),
			Reason:  Reason(em.Get(fieldErrorReason).Enum()),
			Message: em.Get(fieldErrorMessage).String(),
		})
	}
	return resp
}

// setMessage copies src into the message-typed field fd of m. The field
// holds a dynamic message, so the copy goes through the wire format.
func setMessage(m protoreflect.Message, fd protoreflect.FieldDescriptor, src proto.Message) error {
	data, err := proto.Marshal(src)
	if err != nil {
		return err
	}
	return proto.Unmarshal(data, m.Mutable(fd).Message().Interface())
}
