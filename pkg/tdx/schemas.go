package tdx

// Entity kind names.
const (
	EntityTicket  = "ticket"
	EntityAsset   = "asset"
	EntityAccount = "account"
)

// TicketSchema describes ticket attributes. Attributes holds the ticket's
// custom attribute list.
var TicketSchema = NewSchema(EntityTicket, SchemaDefinition{
	Strings: []string{
		"Title", "Description", "RequestorUid", "ResponsibleUid", "ParentTitle", "TypeName", "TypeCategoryName",
		"ClassificationName", "FormName", "Uri", "AccountName", "SourceName", "StatusName", "ImpactName",
		"UrgencyName", "PriorityName", "SlaName", "CreatedUid", "CreatedFullName", "CreatedEmail", "ModifiedUid",
		"ModifiedFullName", "RequestorName", "RequestorFirstName", "RequestorLastName", "RequestorEmail",
		"RequestorPhone", "ResponsibleFullName", "ResponsibleEmail", "ResponsibleGroupName", "RespondedUid",
		"RespondedFullName", "CompletedUid", "CompletedFullName", "ReviewerUid", "ReviewerFullName", "ReviewerEmail",
		"ReviewingGroupName", "ConvertedToTaskUid", "ConvertedToTaskFullName", "TaskProjectName", "TaskPlanName",
		"TaskTitle", "LocationName", "LocationRoomName", "RefCode", "ServiceName", "ServiceCategoryName",
		"ArticleSubject", "ArticleCategoryPathNames",
	},
	Ints: []string{
		"ID", "TypeID", "AccountID", "PriorityID", "StatusID", "SourceID", "ImpactID", "UrgencyID",
		"EstimatedMinutes", "ResponsibleGroupID", "LocationID", "LocationRoomID", "ServiceID", "ParentID",
		"TypeCategoryID", "SlaID", "ActualMinutes", "DaysOld", "ReviewingGroupID", "TaskProjectID", "TaskPlanID",
		"TaskID", "TaskPercentComplete", "ServiceCategoryID", "ArticleID", "AppID", "ParentClass", "Classification",
		"StatusClass", "ArticleStatus", "FormID",
	},
	Decimals: []string{"TimeBudget", "ExpensesBudget", "PriorityOrder", "TimeBudgetUsed", "ExpensesBudgetUsed"},
	Bools:    []string{"IsSlaViolated", "IsSlaRespondByViolated", "IsSlaResolveByViolated", "IsOnHold", "IsConvertedToTask"},
	Dates: []string{
		"GoesOffHoldDate", "StartDate", "EndDate", "RespondByDate", "ResolveByDate", "SlaBeginDate",
		"PlacedOnHoldDate", "CreatedDate", "ModifiedDate", "CompletedDate", "RespondedDate", "ConvertedToTaskDate",
		"TaskStartDate", "TaskEndDate",
	},
	Lists:    []string{"Attributes", "Tasks", "Attachments", "Notify"},
	Required: []string{"TypeID", "AccountID", "PriorityID", "RequestorUid", "Title"},
	Editable: []string{
		"Description", "SourceID", "ImpactID", "UrgencyID", "EstimatedMinutes", "ResponsibleGroupID", "TimeBudget",
		"ExpensesBudget", "LocationID", "LocationRoomID", "ServiceID", "Attributes", "GoesOffHoldDate", "StartDate",
		"EndDate", "ResponsibleUid", "TypeID", "AccountID", "PriorityID", "RequestorUid", "Title", "StatusID",
	},
})

// AssetSchema describes asset attributes.
var AssetSchema = NewSchema(EntityAsset, SchemaDefinition{
	Strings: []string{
		"AppName", "FormName", "ProductModelName", "ManufacturerName", "ProductTypeName", "SupplierName",
		"StatusName", "LocationName", "LocationRoomName", "Tag", "SerialNumber", "Name", "RequestingCustomerID",
		"RequestingCustomerName", "RequestingDepartmentName", "OwningCustomerID", "OwningCustomerName",
		"OwningDepartmentName", "ParentSerialNumber", "ParentName", "ParentTag", "MaintenanceScheduleName",
		"CreatedUid", "CreatedFullName", "ModifiedUid", "ModifiedFullName", "ExternalID", "ExternalSourceName", "Uri",
	},
	Ints: []string{
		"ID", "AppID", "FormID", "ProductModelID", "ManufacturerID", "ProductTypeID", "SupplierID", "StatusID",
		"LocationID", "LocationRoomID", "RequestingDepartmentID", "OwningDepartmentID", "ParentID",
		"MaintenanceScheduleID", "ConfigurationItemID", "ExternalSourceID",
	},
	Decimals: []string{"PurchaseCost"},
	Dates:    []string{"AcquisitionDate", "ExpectedReplacementDate", "CreatedDate", "ModifiedDate"},
	Lists:    []string{"Attributes", "Attachments"},
	Required: []string{"StatusID", "Name"},
	Editable: []string{
		"FormID", "ProductModelID", "SupplierID", "StatusID", "LocationID", "LocationRoomID", "Tag", "SerialNumber",
		"Name", "PurchaseCost", "AcquisitionDate", "ExpectedReplacementDate", "RequestingCustomerID",
		"RequestingDepartmentID", "OwningCustomerID", "OwningDepartmentID", "ParentID", "MaintenanceScheduleID",
		"ExternalID", "ExternalSourceID", "Attributes",
	},
})

// AccountSchema describes account attributes.
var AccountSchema = NewSchema(EntityAccount, SchemaDefinition{
	Strings: []string{
		"Name", "ParentName", "Address1", "Address2", "Address3", "Address4", "City", "StateName", "StateAbbr",
		"PostalCode", "Country", "Phone", "Fax", "Url", "Notes", "Code", "IndustryName", "ManagerUID",
		"ManagerFullName",
	},
	Ints:     []string{"ID", "ParentID", "IndustryID"},
	Bools:    []string{"IsActive"},
	Dates:    []string{"CreatedDate", "ModifiedDate"},
	Lists:    []string{"Attributes"},
	Required: []string{"Name"},
	Editable: []string{
		"Name", "ParentID", "IsActive", "Address1", "Address2", "Address3", "Address4", "City", "StateAbbr",
		"PostalCode", "Country", "Phone", "Fax", "Url", "Notes", "Code", "IndustryID", "ManagerUID", "Attributes",
	},
})

// NewTicket returns an empty ticket entity.
func NewTicket(codec *DateCodec) *Entity { return NewEntity(TicketSchema, codec) }

// NewAsset returns an empty asset entity.
func NewAsset(codec *DateCodec) *Entity { return NewEntity(AssetSchema, codec) }

// NewAccount returns an empty account entity.
func NewAccount(codec *DateCodec) *Entity { return NewEntity(AccountSchema, codec) }

// IsTicket reports whether e is a ticket entity.
func IsTicket(e *Entity) bool { return e != nil && e.Kind() == EntityTicket }

// IsAsset reports whether e is an asset entity.
func IsAsset(e *Entity) bool { return e != nil && e.Kind() == EntityAsset }
