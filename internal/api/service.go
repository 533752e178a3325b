package api

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "stockkeeper.v1.StockKeeper"

// Method names of the service.
const (
	MethodPing                 = "Ping"
	MethodAdminLogin           = "AdminLogin"
	MethodLogin                = "Login"
	MethodRegister             = "Register"
	MethodRegisterOrganization = "RegisterOrganization"
	MethodRefreshToken         = "RefreshToken"
	MethodCreateOrganization   = "CreateOrganization"
	MethodListOrganizations    = "ListOrganizations"
	MethodCreateTag            = "CreateTag"
	MethodListTags             = "ListTags"
	MethodUpdateTag            = "UpdateTag"
	MethodDeleteTag            = "DeleteTag"
	MethodCreateItem           = "CreateItem"
	MethodGetItem              = "GetItem"
	MethodListItems            = "ListItems"
	MethodUpdateItem           = "UpdateItem"
	MethodDeleteItem           = "DeleteItem"
	MethodAddItemPhoto         = "AddItemPhoto"
	MethodDeleteItemPhoto      = "DeleteItemPhoto"
)

// FullMethod returns the "/service/method" path of method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// Metadata keys.
const (
	MetadataAuthorization = "authorization"
	MetadataRequestID     = "x-request-id"
)
