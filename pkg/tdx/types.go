package tdx

import "strconv"

// Named is implemented by every reference-data type held in a lookup table.
type Named interface {
	LookupID() string
	LookupName() string
}

// ReferenceItem is the common shape of simple reference data such as ticket
// priorities, urgencies, impacts, sources, forms and asset product types.
type ReferenceItem struct {
	ID          int     `json:"ID"          yaml:"id"`
	Name        string  `json:"Name"        yaml:"name"`
	Description string  `json:"Description" yaml:"description,omitempty"`
	IsActive    bool    `json:"IsActive"    yaml:"is_active"`
	IsDefault   bool    `json:"IsDefault"   yaml:"is_default"`
	Order       float64 `json:"Order"       yaml:"order,omitempty"`
}

func (r ReferenceItem) LookupID() string   { return strconv.Itoa(r.ID) }
func (r ReferenceItem) LookupName() string { return r.Name }

// TicketType is a ticket type with its category.
type TicketType struct {
	ID           int    `json:"ID"           yaml:"id"`
	AppID        int    `json:"AppID"        yaml:"app_id"`
	Name         string `json:"Name"         yaml:"name"`
	Description  string `json:"Description"  yaml:"description,omitempty"`
	CategoryID   int    `json:"CategoryID"   yaml:"category_id"`
	CategoryName string `json:"CategoryName" yaml:"category_name"`
	IsActive     bool   `json:"IsActive"     yaml:"is_active"`
}

func (t TicketType) LookupID() string   { return strconv.Itoa(t.ID) }
func (t TicketType) LookupName() string { return t.Name }

// TicketStatus is a ticket status. StatusClass is one of the status class
// constants (New, In Process, Completed, ...).
type TicketStatus struct {
	ID          int     `json:"ID"          yaml:"id"`
	AppID       int     `json:"AppID"       yaml:"app_id"`
	Name        string  `json:"Name"        yaml:"name"`
	Description string  `json:"Description" yaml:"description,omitempty"`
	Order       float64 `json:"Order"       yaml:"order"`
	StatusClass int     `json:"StatusClass" yaml:"status_class"`
	IsActive    bool    `json:"IsActive"    yaml:"is_active"`
	IsDefault   bool    `json:"IsDefault"   yaml:"is_default"`
}

func (s TicketStatus) LookupID() string   { return strconv.Itoa(s.ID) }
func (s TicketStatus) LookupName() string { return s.Name }

// AssetStatus is an asset status.
type AssetStatus struct {
	ID             int     `json:"ID"             yaml:"id"`
	Name           string  `json:"Name"           yaml:"name"`
	Description    string  `json:"Description"    yaml:"description,omitempty"`
	Order          float64 `json:"Order"          yaml:"order"`
	IsActive       bool    `json:"IsActive"       yaml:"is_active"`
	IsOutOfService bool    `json:"IsOutOfService" yaml:"is_out_of_service"`
}

func (s AssetStatus) LookupID() string   { return strconv.Itoa(s.ID) }
func (s AssetStatus) LookupName() string { return s.Name }

// ProductModel is an asset product model.
type ProductModel struct {
	ID               int    `json:"ID"               yaml:"id"`
	Name             string `json:"Name"             yaml:"name"`
	Description      string `json:"Description"      yaml:"description,omitempty"`
	IsActive         bool   `json:"IsActive"         yaml:"is_active"`
	ManufacturerID   int    `json:"ManufacturerID"   yaml:"manufacturer_id"`
	ManufacturerName string `json:"ManufacturerName" yaml:"manufacturer_name"`
	ProductTypeID    int    `json:"ProductTypeID"    yaml:"product_type_id"`
	ProductTypeName  string `json:"ProductTypeName"  yaml:"product_type_name"`
	PartNumber       string `json:"PartNumber"       yaml:"part_number,omitempty"`
}

func (m ProductModel) LookupID() string   { return strconv.Itoa(m.ID) }
func (m ProductModel) LookupName() string { return m.Name }

// Vendor is a supplier or manufacturer.
type Vendor struct {
	ID             int    `json:"ID"             yaml:"id"`
	Name           string `json:"Name"           yaml:"name"`
	Description    string `json:"Description"    yaml:"description,omitempty"`
	IsActive       bool   `json:"IsActive"       yaml:"is_active"`
	IsManufacturer bool   `json:"IsManufacturer" yaml:"is_manufacturer"`
	IsSupplier     bool   `json:"IsSupplier"     yaml:"is_supplier"`
}

func (v Vendor) LookupID() string   { return strconv.Itoa(v.ID) }
func (v Vendor) LookupName() string { return v.Name }

// Account is an account or department.
type Account struct {
	ID           int               `json:"ID"           yaml:"id"`
	Name         string            `json:"Name"         yaml:"name"`
	ParentID     int               `json:"ParentID"     yaml:"parent_id,omitempty"`
	ParentName   string            `json:"ParentName"   yaml:"parent_name,omitempty"`
	IsActive     bool              `json:"IsActive"     yaml:"is_active"`
	Address1     string            `json:"Address1"     yaml:"address1,omitempty"`
	Address2     string            `json:"Address2"     yaml:"address2,omitempty"`
	City         string            `json:"City"         yaml:"city,omitempty"`
	StateAbbr    string            `json:"StateAbbr"    yaml:"state_abbr,omitempty"`
	PostalCode   string            `json:"PostalCode"   yaml:"postal_code,omitempty"`
	Country      string            `json:"Country"      yaml:"country,omitempty"`
	Phone        string            `json:"Phone"        yaml:"phone,omitempty"`
	Code         string            `json:"Code"         yaml:"code,omitempty"`
	ManagerUID   string            `json:"ManagerUID"   yaml:"manager_uid,omitempty"`
	CreatedDate  string            `json:"CreatedDate"  yaml:"created_date,omitempty"`
	ModifiedDate string            `json:"ModifiedDate" yaml:"modified_date,omitempty"`
	Attributes   []CustomAttribute `json:"Attributes"   yaml:"attributes,omitempty"`
}

func (a Account) LookupID() string   { return strconv.Itoa(a.ID) }
func (a Account) LookupName() string { return a.Name }

// Person is a user record as returned by people lookups.
type Person struct {
	UID              string `json:"UID"              yaml:"uid"`
	ReferenceID      int    `json:"ReferenceID"      yaml:"reference_id"`
	AlternateID      string `json:"AlternateID"      yaml:"alternate_id,omitempty"`
	UserName         string `json:"UserName"         yaml:"user_name"`
	FirstName        string `json:"FirstName"        yaml:"first_name"`
	LastName         string `json:"LastName"         yaml:"last_name"`
	FullName         string `json:"FullName"         yaml:"full_name"`
	PrimaryEmail     string `json:"PrimaryEmail"     yaml:"primary_email"`
	AlternateEmail   string `json:"AlternateEmail"   yaml:"alternate_email,omitempty"`
	Title            string `json:"Title"            yaml:"title,omitempty"`
	WorkPhone        string `json:"WorkPhone"        yaml:"work_phone,omitempty"`
	DefaultAccountID int    `json:"DefaultAccountID" yaml:"default_account_id,omitempty"`
	IsActive         bool   `json:"IsActive"         yaml:"is_active"`
}

func (p Person) LookupID() string   { return p.UID }
func (p Person) LookupName() string { return p.FullName }

// Group is a group of people.
type Group struct {
	ID          int    `json:"ID"          yaml:"id"`
	Name        string `json:"Name"        yaml:"name"`
	Description string `json:"Description" yaml:"description,omitempty"`
	IsActive    bool   `json:"IsActive"    yaml:"is_active"`
	ExternalID  string `json:"ExternalID"  yaml:"external_id,omitempty"`
}

func (g Group) LookupID() string   { return strconv.Itoa(g.ID) }
func (g Group) LookupName() string { return g.Name }

// Location is a building or site. Rooms are only populated on a full record.
type Location struct {
	ID             int    `json:"ID"             yaml:"id"`
	Name           string `json:"Name"           yaml:"name"`
	Description    string `json:"Description"    yaml:"description,omitempty"`
	ExternalID     string `json:"ExternalID"     yaml:"external_id,omitempty"`
	IsActive       bool   `json:"IsActive"       yaml:"is_active"`
	Address        string `json:"Address"        yaml:"address,omitempty"`
	City           string `json:"City"           yaml:"city,omitempty"`
	State          string `json:"State"          yaml:"state,omitempty"`
	PostalCode     string `json:"PostalCode"     yaml:"postal_code,omitempty"`
	Country        string `json:"Country"        yaml:"country,omitempty"`
	IsRoomRequired bool   `json:"IsRoomRequired" yaml:"is_room_required"`
	RoomsCount     int    `json:"RoomsCount"     yaml:"rooms_count"`
	Rooms          []Room `json:"Rooms"          yaml:"rooms,omitempty"`
}

func (l Location) LookupID() string   { return strconv.Itoa(l.ID) }
func (l Location) LookupName() string { return l.Name }

// Room is a room inside a location.
type Room struct {
	ID          int    `json:"ID"          yaml:"id"`
	Name        string `json:"Name"        yaml:"name"`
	ExternalID  string `json:"ExternalID"  yaml:"external_id,omitempty"`
	Description string `json:"Description" yaml:"description,omitempty"`
	Floor       string `json:"Floor"       yaml:"floor,omitempty"`
	Capacity    int    `json:"Capacity"    yaml:"capacity,omitempty"`
}

func (r Room) LookupID() string   { return strconv.Itoa(r.ID) }
func (r Room) LookupName() string { return r.Name }

// Choice is an enumerated legal value of a custom attribute.
type Choice struct {
	ID       int     `json:"ID"       yaml:"id"`
	Name     string  `json:"Name"     yaml:"name"`
	IsActive bool    `json:"IsActive" yaml:"is_active"`
	Order    float64 `json:"Order"    yaml:"order,omitempty"`
}

// CustomAttribute describes a custom attribute and, on an entity record, its value.
type CustomAttribute struct {
	ID          int      `json:"ID"          yaml:"id"`
	Name        string   `json:"Name"        yaml:"name"`
	Order       int      `json:"Order"       yaml:"order,omitempty"`
	Description string   `json:"Description" yaml:"description,omitempty"`
	SectionID   int      `json:"SectionID"   yaml:"section_id,omitempty"`
	SectionName string   `json:"SectionName" yaml:"section_name,omitempty"`
	FieldType   string   `json:"FieldType"   yaml:"field_type"`
	DataType    string   `json:"DataType"    yaml:"data_type"`
	Choices     []Choice `json:"Choices"     yaml:"choices,omitempty"`
	IsRequired  bool     `json:"IsRequired"  yaml:"is_required"`
	IsUpdatable bool     `json:"IsUpdatable" yaml:"is_updatable"`
	Value       string   `json:"Value"       yaml:"value,omitempty"`
	ValueText   string   `json:"ValueText"   yaml:"value_text,omitempty"`
}

func (a CustomAttribute) LookupID() string   { return strconv.Itoa(a.ID) }
func (a CustomAttribute) LookupName() string { return a.Name }

// CustomAttributeValue is the wire form of a custom attribute assignment.
type CustomAttributeValue struct {
	ID    int    `json:"ID"    yaml:"id"`
	Value string `json:"Value" yaml:"value"`
}

// TicketTask is a task attached to a ticket.
type TicketTask struct {
	ID                    int    `json:"ID,omitempty"                    yaml:"id"`
	TicketID              int    `json:"TicketID,omitempty"              yaml:"ticket_id"`
	Title                 string `json:"Title"                           yaml:"title"`
	Description           string `json:"Description,omitempty"           yaml:"description,omitempty"`
	StartDate             string `json:"StartDate,omitempty"             yaml:"start_date,omitempty"`
	EndDate               string `json:"EndDate,omitempty"               yaml:"end_date,omitempty"`
	CompleteWithinMinutes int    `json:"CompleteWithinMinutes,omitempty" yaml:"complete_within_minutes,omitempty"`
	EstimatedMinutes      int    `json:"EstimatedMinutes,omitempty"      yaml:"estimated_minutes,omitempty"`
	PercentComplete       int    `json:"PercentComplete,omitempty"       yaml:"percent_complete,omitempty"`
	ResponsibleUID        string `json:"ResponsibleUid,omitempty"        yaml:"responsible_uid,omitempty"`
	ResponsibleGroupID    int    `json:"ResponsibleGroupID,omitempty"    yaml:"responsible_group_id,omitempty"`
	PredecessorID         int    `json:"PredecessorID,omitempty"         yaml:"predecessor_id,omitempty"`
	CompletedDate         string `json:"CompletedDate,omitempty"         yaml:"completed_date,omitempty"`
}

// Attachment is a file attached to a ticket or asset.
type Attachment struct {
	ID              string `json:"ID"              yaml:"id"`
	Name            string `json:"Name"            yaml:"name"`
	Size            int64  `json:"Size"            yaml:"size"`
	CreatedUID      string `json:"CreatedUid"      yaml:"created_uid"`
	CreatedFullName string `json:"CreatedFullName" yaml:"created_full_name"`
	CreatedDate     string `json:"CreatedDate"     yaml:"created_date"`
	URI             string `json:"Uri"             yaml:"uri"`
	ContentURI      string `json:"ContentUri"      yaml:"content_uri"`
}

// ResourceItem is a person or group reference, such as an asset user.
type ResourceItem struct {
	Name  string `json:"Name"  yaml:"name"`
	Value string `json:"Value" yaml:"value"`
}
