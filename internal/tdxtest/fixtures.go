package tdxtest

import (
	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
)

// Well-known fixture identities.
const (
	JaneUID   = "6f1c2a8e-0000-4000-8000-000000000001"
	RobertUID = "6f1c2a8e-0000-4000-8000-000000000002"
	ServiceID = "6f1c2a8e-0000-4000-8000-000000000003"
)

// Fixtures is the state served by the fake service. Tickets and assets are
// held as raw JSON objects keyed by ID, exactly as the service returns them.
type Fixtures struct {
	People       []tdx.Person
	Accounts     []tdx.Account
	Groups       []tdx.Group
	GroupMembers map[int][]tdx.Person
	Locations    []tdx.Location
	// Attributes are keyed by component ID.
	Attributes map[int][]tdx.CustomAttribute

	TicketTypes      []tdx.TicketType
	TicketStatuses   []tdx.TicketStatus
	TicketPriorities []tdx.ReferenceItem
	TicketUrgencies  []tdx.ReferenceItem
	TicketImpacts    []tdx.ReferenceItem
	TicketSources    []tdx.ReferenceItem
	TicketForms      []tdx.ReferenceItem
	Tickets          map[int]map[string]interface{}
	TicketTasks      map[int][]tdx.TicketTask

	AssetStatuses []tdx.AssetStatus
	AssetForms    []tdx.ReferenceItem
	ProductModels []tdx.ProductModel
	ProductTypes  []tdx.ReferenceItem
	Vendors       []tdx.Vendor
	Assets        map[int]map[string]interface{}
	AssetUsers    map[int][]tdx.ResourceItem

	nextID int
}

// NextID returns a fresh ID for a created object.
func (f *Fixtures) NextID() int {
	f.nextID++

	return f.nextID
}

// DefaultFixtures returns a small, consistent data set.
//
//nolint:funlen
func DefaultFixtures() *Fixtures {
	jane := tdx.Person{
		UID: JaneUID, UserName: "jdoe", FirstName: "Jane", LastName: "Doe", FullName: "Jane Doe",
		PrimaryEmail: "jdoe@example.edu", IsActive: true,
	}
	robert := tdx.Person{
		UID: RobertUID, UserName: "rsmith", FirstName: "Robert", LastName: "Smith", FullName: "Robert Smith",
		PrimaryEmail: "rsmith@example.edu", IsActive: true,
	}
	service := tdx.Person{
		UID: ServiceID, UserName: DefaultUsername, FullName: "TDX Service Account",
		PrimaryEmail: "svc-tdx@example.edu", IsActive: true,
	}

	return &Fixtures{
		People: []tdx.Person{jane, robert, service},
		Accounts: []tdx.Account{
			{ID: 101, Name: "Information Technology", IsActive: true},
			{ID: 102, Name: "Facilities Management", IsActive: true},
			{ID: 103, Name: "Information Security", IsActive: true},
		},
		Groups: []tdx.Group{
			{ID: 201, Name: "Help Desk", IsActive: true},
			{ID: 202, Name: "Network Operations", IsActive: true},
		},
		GroupMembers: map[int][]tdx.Person{201: {jane, robert}},
		Locations: []tdx.Location{
			{ID: 301, Name: "Main Hall", IsActive: true, RoomsCount: 2, Rooms: []tdx.Room{
				{ID: 401, Name: "101"}, {ID: 402, Name: "Lobby"},
			}},
			{ID: 302, Name: "Annex 2", IsActive: true},
			{ID: 303, Name: "Annex", IsActive: true, RoomsCount: 1, Rooms: []tdx.Room{{ID: 403, Name: "Storage B"}}},
		},
		Attributes: map[int][]tdx.CustomAttribute{
			9: {
				{ID: 501, Name: "Building Floor", FieldType: "dropdown", Choices: []tdx.Choice{
					{ID: 601, Name: "First", IsActive: true}, {ID: 602, Name: "Second", IsActive: true},
				}},
				{ID: 502, Name: "Review Date", FieldType: "datepicker", DataType: "Date"},
			},
			27: {
				{ID: 511, Name: "Warranty Expiration", FieldType: "datepicker", DataType: "Date"},
				{ID: 512, Name: "Funding Source", FieldType: "dropdown", Choices: []tdx.Choice{
					{ID: 611, Name: "Grant", IsActive: true}, {ID: 612, Name: "Operating", IsActive: true},
				}},
				{ID: 513, Name: "Funding Source Notes", FieldType: "textbox", DataType: "String"},
			},
			63: {
				{ID: 521, Name: "Support Tier", FieldType: "textbox", DataType: "String"},
			},
		},
		TicketTypes: []tdx.TicketType{
			{ID: 11, AppID: DefaultTicketAppID, Name: "General Support", CategoryName: "IT", IsActive: true},
			{ID: 12, AppID: DefaultTicketAppID, Name: "Hardware Repair", CategoryName: "IT", IsActive: true},
		},
		TicketStatuses: []tdx.TicketStatus{
			{ID: 21, Name: "New", StatusClass: 1, IsActive: true, IsDefault: true},
			{ID: 22, Name: "Open", StatusClass: 2, IsActive: true},
			{ID: 23, Name: "On Hold", StatusClass: 5, IsActive: true},
			{ID: 24, Name: "Closed", StatusClass: 3, IsActive: true},
			{ID: 25, Name: "Cancelled", StatusClass: 4, IsActive: true},
			{ID: 26, Name: "Resolved", StatusClass: 3, IsActive: true},
		},
		TicketPriorities: []tdx.ReferenceItem{
			{ID: 31, Name: "Low", IsActive: true, IsDefault: true},
			{ID: 32, Name: "Medium", IsActive: true},
			{ID: 33, Name: "High", IsActive: true},
		},
		TicketUrgencies: []tdx.ReferenceItem{{ID: 41, Name: "Low", IsActive: true}, {ID: 42, Name: "High", IsActive: true}},
		TicketImpacts: []tdx.ReferenceItem{
			{ID: 51, Name: "Affects User", IsActive: true},
			{ID: 52, Name: "Affects Department", IsActive: true},
		},
		TicketSources: []tdx.ReferenceItem{{ID: 61, Name: "Email", IsActive: true}, {ID: 62, Name: "Phone", IsActive: true}},
		TicketForms:   []tdx.ReferenceItem{{ID: 71, Name: "IT Request Form", IsActive: true}},
		Tickets: map[int]map[string]interface{}{
			1001: {
				"ID": 1001, "AppID": DefaultTicketAppID, "Title": "Printer offline",
				"Description": "The lobby printer is offline", "TypeID": 11, "TypeName": "General Support",
				"AccountID": 101, "PriorityID": 31, "StatusID": 21, "StatusName": "New",
				"RequestorUid": JaneUID, "Classification": 32, "CreatedDate": "2024-03-04T15:00:00Z",
				"IsOnHold": false, "Attributes": []interface{}{},
			},
			1002: {
				"ID": 1002, "AppID": DefaultTicketAppID, "Title": "VPN access request", "TypeID": 11,
				"AccountID": 103, "PriorityID": 32, "StatusID": 24, "StatusName": "Closed",
				"RequestorUid": RobertUID, "Classification": 46, "CreatedDate": "2024-02-01T09:30:00Z",
			},
		},
		TicketTasks: map[int][]tdx.TicketTask{
			1001: {{ID: 9001, TicketID: 1001, Title: "Check toner", PercentComplete: 50}},
		},
		AssetStatuses: []tdx.AssetStatus{
			{ID: 81, Name: "Inventory", IsActive: true},
			{ID: 82, Name: "In Use", IsActive: true},
			{ID: 83, Name: "Broken", IsActive: true, IsOutOfService: true},
			{ID: 84, Name: "Retired", IsActive: true, IsOutOfService: true},
			{ID: 85, Name: "Disposed", IsActive: true, IsOutOfService: true},
			{ID: 86, Name: "On Loan", IsActive: true},
		},
		AssetForms:    []tdx.ReferenceItem{{ID: 91, Name: "Computer Form", IsActive: true}},
		ProductModels: []tdx.ProductModel{{ID: 701, Name: "Latitude 7440", ManufacturerName: "Dell", ProductTypeID: 711, IsActive: true}},
		ProductTypes:  []tdx.ReferenceItem{{ID: 711, Name: "Laptop", IsActive: true}},
		Vendors:       []tdx.Vendor{{ID: 721, Name: "Dell Technologies", IsManufacturer: true, IsActive: true}},
		Assets: map[int]map[string]interface{}{
			2001: {
				"ID": 2001, "AppID": DefaultAssetAppID, "Name": "LT-0042", "Tag": "00042",
				"SerialNumber": "SN-ABC-42", "StatusID": 82, "StatusName": "In Use", "LocationID": 301,
				"Attributes": []interface{}{
					map[string]interface{}{"ID": 512, "Name": "Funding Source", "Value": "611", "ValueText": "Grant"},
					map[string]interface{}{"ID": 521, "Name": "Support Tier", "Value": "Gold"},
				},
			},
			2002: {
				"ID": 2002, "AppID": DefaultAssetAppID, "Name": "LT-0420", "Tag": "00420",
				"SerialNumber": "SN-ABC-420", "StatusID": 81, "StatusName": "Inventory",
			},
			2003: {
				"ID": 2003, "AppID": DefaultAssetAppID, "Name": "Old desktop", "Tag": "7",
				"SerialNumber": "SN-OLD-7", "StatusID": 84, "StatusName": "Retired",
			},
		},
		AssetUsers: map[int][]tdx.ResourceItem{2001: {{Name: "Jane Doe", Value: JaneUID}}},
		nextID:     5000,
	}
}
