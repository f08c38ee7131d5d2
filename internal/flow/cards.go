// Package flow models the automation surface the host platform exposes:
// trigger dispatch to registered flow-card listeners, the card name
// catalog, and argument autocomplete providers.
package flow

// Device trigger cards.
const (
	TriggerNoteCreated            = "note_created"
	TriggerProductCheckedAny      = "product_checked_any"
	TriggerProductQuantityChanged = "product_quantity_changed"
	TriggerProductRemoved         = "product_removed"
	TriggerProductUnchecked       = "product_unchecked"
	TriggerTaskChecked            = "task_checked"
	TriggerTaskCheckedAny         = "task_checked_any"
	TriggerTaskCreated            = "task_created"
	TriggerTaskDeadlineDue        = "task_deadline_due"
	TriggerTaskRemoved            = "task_removed"
	TriggerTaskUnchecked          = "task_unchecked"
	TriggerTaskUncheckedAny       = "task_unchecked_any"
)

// Condition cards.
const (
	ConditionNoteExists         = "note_exists"
	ConditionProductExists      = "product_exists"
	ConditionProductHasQuantity = "product_has_quantity"
	ConditionProductIsChecked   = "product_is_checked"
	ConditionTaskExists         = "task_exists"
	ConditionTaskIs             = "task_is"
	ConditionTaskIsChecked      = "task_is_checked"
)

// Action cards.
const (
	ActionAddNote              = "add_note"
	ActionAddPersonTask        = "add_person_task"
	ActionAddPlannedPersonTask = "add_planned_person_task"
	ActionAddPlannedTask       = "add_planned_task"
	ActionAddProduct           = "add_product"
	ActionAddProductQuantity   = "add_product_quantity"
	ActionAddTask              = "add_task"
	ActionCheckProduct         = "check_product"
	ActionCheckTask            = "check_task"
	ActionClearList            = "clear_list"
	ActionGetContents          = "get_contents"
	ActionGetContentsMarkdown  = "get_contents_markdown"
	ActionMoveUnchecked        = "move_unchecked"
	ActionRemoveChecked        = "remove_checked"
	ActionRemoveNote           = "remove_note"
	ActionRemoveProduct        = "remove_product"
	ActionRemoveTask           = "remove_task"
	ActionSetProductCategory   = "set_product_category"
	ActionSetProductQuantity   = "set_product_quantity"
	ActionUncheckProduct       = "uncheck_product"
	ActionUncheckTask          = "uncheck_task"
)
